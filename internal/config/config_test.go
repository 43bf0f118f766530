package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davebur/mastodon-cleanliness/internal/config"
)

func validConfig() config.Config {
	cfg := config.Default()
	cfg.BaseURL = "https://example.social"
	return cfg
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "defaults_with_url", mutate: func(*config.Config) {}},
		{name: "missing_url", mutate: func(c *config.Config) { c.BaseURL = "" }, wantErr: true},
		{name: "relative_url", mutate: func(c *config.Config) { c.BaseURL = "example.social" }, wantErr: true},
		{name: "ftp_url", mutate: func(c *config.Config) { c.BaseURL = "ftp://example.social" }, wantErr: true},
		{name: "zero_page_size", mutate: func(c *config.Config) { c.PageSize = 0 }, wantErr: true},
		{name: "server_max_page_size", mutate: func(c *config.Config) { c.PageSize = config.MaxPageSize }},
		{name: "page_size_above_server_max", mutate: func(c *config.Config) { c.PageSize = config.MaxPageSize + 20 }, wantErr: true},
		{name: "zero_max_pages", mutate: func(c *config.Config) { c.MaxPages = 0 }, wantErr: true},
		{name: "zero_workers", mutate: func(c *config.Config) { c.ListWorkers = 0 }, wantErr: true},
		{name: "unknown_source", mutate: func(c *config.Config) { c.Source = "bluesky" }, wantErr: true},
		{name: "neo4j_without_account", mutate: func(c *config.Config) { c.Source = config.SourceNeo4j }, wantErr: true},
		{name: "neo4j_with_account", mutate: func(c *config.Config) {
			c.Source = config.SourceNeo4j
			c.Account = "alice"
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReadToken(t *testing.T) {
	dir := t.TempDir()

	t.Run("first_non_blank_line", func(t *testing.T) {
		path := filepath.Join(dir, "token.txt")
		require.NoError(t, os.WriteFile(path, []byte("\n  secret-token \nhttps://example.social\n"), 0o600))

		token, err := config.ReadToken(path)
		require.NoError(t, err)
		assert.Equal(t, "secret-token", token)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := config.ReadToken(filepath.Join(dir, "absent.txt"))
		assert.ErrorIs(t, err, config.ErrMissingToken)
	})

	t.Run("empty_file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.txt")
		require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o600))

		_, err := config.ReadToken(path)
		assert.ErrorIs(t, err, config.ErrEmptyToken)
	})
}
