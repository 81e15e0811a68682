package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"

	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
)

// Connector implements interfaces.GitHubConnector
type Connector struct {
	client *github.Client
	config *common.GitHubConfig
	logger arbor.ILogger
}

// NewConnector creates a GitHub connector for the configured content source.
// A token is optional; without one the connector is limited to public repos
// and unauthenticated rate limits.
func NewConnector(config *common.GitHubConfig, logger arbor.ILogger) (*Connector, error) {
	if config.Owner == "" || config.Repo == "" {
		return nil, fmt.Errorf("github owner and repo are required")
	}

	var client *github.Client
	if config.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: config.Token},
		)
		tc := oauth2.NewClient(context.Background(), ts)
		client = github.NewClient(tc)
	} else {
		client = github.NewClient(nil)
	}

	return &Connector{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// TestConnection verifies the configured repository is reachable
func (c *Connector) TestConnection(ctx context.Context) error {
	_, _, err := c.client.Repositories.Get(ctx, c.config.Owner, c.config.Repo)
	if err != nil {
		return fmt.Errorf("github connection test failed: %w", err)
	}
	return nil
}

// Type returns the connector type
func (c *Connector) Type() string {
	return "github"
}

// Ensure interface compliance
var _ interfaces.GitHubConnector = (*Connector)(nil)
