package npm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/changetower/pkg/integrations"
)

// DefaultBaseURL is the public npm registry.
const DefaultBaseURL = "https://registry.npmjs.org"

// Manifest is the dependency section of one published package version.
type Manifest struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// Client fetches version manifests from the npm registry.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a registry client. An empty baseURL uses [DefaultBaseURL].
func NewClient(c *integrations.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{Client: c, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// ManifestURL returns the registry URL of pkg at version.
func (c *Client) ManifestURL(pkg, version string) string {
	return c.baseURL + "/" + pkg + "/" + version
}

// FetchManifest returns the manifest of pkg at exactly version.
// Missing dependency sections are returned as empty maps.
func (c *Client) FetchManifest(ctx context.Context, pkg, version string) (*Manifest, error) {
	var m Manifest
	if err := c.Get(ctx, c.ManifestURL(pkg, version), &m); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: npm package %s@%s", err, pkg, version)
		}
		return nil, err
	}
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	if m.DevDependencies == nil {
		m.DevDependencies = map[string]string{}
	}
	if m.PeerDependencies == nil {
		m.PeerDependencies = map[string]string{}
	}
	return &m, nil
}
