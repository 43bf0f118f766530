package config

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
)

const (
	DefaultEnvFile   = ".env"
	DefaultTokenFile = "access_token.txt"
	DefaultPageSize  = 40
	MaxPageSize      = 80
	DefaultMaxPages  = 1000
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	EnvPrefix        = "CLEANLINESS"

	SourceMastodon = "mastodon"
	SourceNeo4j    = "neo4j"
)

var (
	ErrMissingToken = errors.New("no token file detected")
	ErrEmptyToken   = errors.New("token file is empty")
)

// Config is the resolved run configuration.
type Config struct {
	BaseURL     string
	TokenFile   string
	Source      string
	PageSize    int
	MaxPages    int
	ListWorkers int

	LogLevel  string
	LogFormat string
	LogFile   string

	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	// Account is the acct audited when reading from a Neo4j snapshot.
	Account string
}

func Default() Config {
	return Config{
		TokenFile:   DefaultTokenFile,
		Source:      SourceMastodon,
		PageSize:    DefaultPageSize,
		MaxPages:    DefaultMaxPages,
		ListWorkers: 1,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		Neo4jURI:    "neo4j://localhost:7687",
		Neo4jUser:   "neo4j",
	}
}

func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("parse server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server url %q must be an absolute http(s) url", c.BaseURL)
	}
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return fmt.Errorf("page size must be between 1 and %d, got %d", MaxPageSize, c.PageSize)
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("max pages must be positive, got %d", c.MaxPages)
	}
	if c.ListWorkers < 1 {
		return fmt.Errorf("list workers must be positive, got %d", c.ListWorkers)
	}
	switch c.Source {
	case SourceMastodon:
	case SourceNeo4j:
		if c.Account == "" {
			return errors.New("neo4j source requires an account to audit")
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	return nil
}

// ReadToken returns the access token stored in path: the first non-blank line.
// A leading "~" is expanded to the home directory.
func ReadToken(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand token path: %w", err)
	}

	f, err := os.Open(expanded)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrMissingToken, expanded)
		}
		return "", fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return "", fmt.Errorf("%w: %s", ErrEmptyToken, expanded)
}
