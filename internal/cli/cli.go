package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/changetower/internal/config"
	"github.com/matzehuels/changetower/pkg/buildinfo"
	"github.com/matzehuels/changetower/pkg/observability"
)

// appName is the application name used for directories and display.
const appName = "changetower"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	stderr     io.Writer
	configPath string
	logFile    string
	verbose    bool

	cfg     *config.Config
	closers []io.Closer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stderr: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Changetower explains Expo module changelogs",
		Long: `Changetower fetches the changelogs of Expo SDK modules and explains
releases without user-facing changes by walking the dependency updates that
shipped with them.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.setup(cmd) },
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/changetower/config.toml)")
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "", "also write logs to a rotated file")

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.modulesCommand())
	root.AddCommand(c.branchesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and configures logging. Flags win over
// the config file.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Path(c.configPath))
	if err != nil {
		return err
	}
	c.cfg = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)

	logFile := cfg.Log.File
	if c.logFile != "" {
		logFile = c.logFile
	}
	if logFile != "" {
		rotated := newRotatedFile(logFile, cfg.Log)
		c.closers = append(c.closers, rotated)
		c.Logger.SetOutput(io.MultiWriter(c.stderr, rotated))
	}

	if level == log.DebugLevel {
		hooks := newLogHooks(c.Logger)
		observability.SetFetchHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// Close releases the store and log file opened by the last command.
func (c *CLI) Close() {
	for _, cl := range c.closers {
		_ = cl.Close()
	}
	c.closers = nil
}

// settings returns the loaded configuration, or defaults when setup did not
// run (tests calling command functions directly).
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
