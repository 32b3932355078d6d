package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/changetower/pkg/integrations"
)

// DefaultBaseURL is the raw-content root of the Expo monorepo.
const DefaultBaseURL = "https://raw.githubusercontent.com/expo/expo"

// Client fetches CHANGELOG.md documents from the raw-content host.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a changelog client. An empty baseURL uses [DefaultBaseURL].
func NewClient(c *integrations.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{Client: c, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// PackagePath returns the path segment of a package inside packages/.
// The leading "@" of a scoped name is percent-encoded.
func PackagePath(pkg string) string {
	return strings.Replace(pkg, "@", "%40", 1)
}

// ChangelogURL returns the URL of pkg's changelog on branch.
func (c *Client) ChangelogURL(pkg, branch string) string {
	return fmt.Sprintf("%s/%s/packages/%s/CHANGELOG.md", c.baseURL, branch, PackagePath(pkg))
}

// FetchChangelog returns the raw Markdown changelog of pkg on branch.
// A missing document yields an error wrapping [integrations.ErrNotFound].
func (c *Client) FetchChangelog(ctx context.Context, pkg, branch string) (string, error) {
	content, err := c.GetText(ctx, c.ChangelogURL(pkg, branch))
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return "", fmt.Errorf("%w: changelog for %s on %s", err, pkg, branch)
		}
		return "", err
	}
	return content, nil
}
