package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks reports observability events as debug log lines. It is
// registered only when the log level is debug.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l.WithPrefix("trace")}
}

func (h *logHooks) OnFetchStart(_ context.Context, pkg, branch string) {
	h.logger.Debug("fetch start", "package", pkg, "branch", branch)
}

func (h *logHooks) OnFetchComplete(_ context.Context, pkg, branch string, cached bool, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "package", pkg, "branch", branch, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("fetch done", "package", pkg, "branch", branch, "cached", cached, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnEnrich(_ context.Context, pkg string, silent, trees int, d time.Duration) {
	h.logger.Debug("enriched", "package", pkg, "silent_versions", silent, "trees", trees, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnRetry(_ context.Context, attempt int, delay time.Duration, err error) {
	h.logger.Debug("retry", "attempt", attempt+1, "delay", delay, "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
