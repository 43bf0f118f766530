package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/davebur/mastodon-cleanliness/internal/app"
	"github.com/davebur/mastodon-cleanliness/internal/audit"
	"github.com/davebur/mastodon-cleanliness/internal/clients"
	"github.com/davebur/mastodon-cleanliness/internal/config"
	"github.com/davebur/mastodon-cleanliness/internal/logger"
	"github.com/davebur/mastodon-cleanliness/internal/storage"
)

const (
	flagURL           = "url"
	flagToken         = "token"
	flagDebug         = "debug"
	flagLogLevel      = "log-level"
	flagLogFormat     = "log-format"
	flagLogFile       = "log-file"
	flagPageSize      = "page-size"
	flagMaxPages      = "max-pages"
	flagListWorkers   = "list-workers"
	flagSource        = "source"
	flagNeo4jURI      = "neo4j-uri"
	flagNeo4jUser     = "neo4j-user"
	flagNeo4jPassword = "neo4j-password"
	flagAccount       = "account"
)

// NewRootCommand builds the command; the report is written to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "cleanliness",
		Short: "Audit Mastodon followings against lists and followers",
		Long: `cleanliness reads the accounts you follow, the accounts following you
and the members of your lists, then prints who you follow but have not put
into any list and who follows you but is not followed back.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromViper(v)
			if v.GetBool(flagDebug) {
				cfg.LogLevel = "debug"
			}

			closer, err := logger.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
			if err != nil {
				return err
			}
			defer closer.Close()

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(cmd.Context(), cfg, out)
		},
	}

	bindFlags(cmd.Flags(), v)
	return cmd
}

func bindFlags(flags *pflag.FlagSet, v *viper.Viper) {
	defaults := config.Default()

	flags.StringP(flagURL, "u", "", "The Mastodon server URL")
	flags.StringP(flagToken, "t", defaults.TokenFile, "The path to the access token file")
	flags.BoolP(flagDebug, "d", false, "Print debug information")
	flags.String(flagLogLevel, defaults.LogLevel, "Logging level (debug, info, warn, error)")
	flags.String(flagLogFormat, defaults.LogFormat, "Logging format (text, json)")
	flags.String(flagLogFile, "", "Write logs to this file instead of stderr")
	flags.Int(flagPageSize, defaults.PageSize, "Accounts requested per page")
	flags.Int(flagMaxPages, defaults.MaxPages, "Stop paginating a listing after this many pages")
	flags.Int(flagListWorkers, defaults.ListWorkers, "Lists reduced concurrently")
	flags.String(flagSource, defaults.Source, "Where to read the graph from (mastodon, neo4j)")
	flags.String(flagNeo4jURI, defaults.Neo4jURI, "Neo4j URI for the neo4j source")
	flags.String(flagNeo4jUser, defaults.Neo4jUser, "Neo4j user")
	flags.String(flagNeo4jPassword, "", "Neo4j password")
	flags.String(flagAccount, "", "Account (acct) to audit in the neo4j source")

	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		logrus.WithError(err).Fatal("bind flags")
	}
}

func configFromViper(v *viper.Viper) config.Config {
	return config.Config{
		BaseURL:       v.GetString(flagURL),
		TokenFile:     v.GetString(flagToken),
		Source:        v.GetString(flagSource),
		PageSize:      v.GetInt(flagPageSize),
		MaxPages:      v.GetInt(flagMaxPages),
		ListWorkers:   v.GetInt(flagListWorkers),
		LogLevel:      v.GetString(flagLogLevel),
		LogFormat:     v.GetString(flagLogFormat),
		LogFile:       v.GetString(flagLogFile),
		Neo4jURI:      v.GetString(flagNeo4jURI),
		Neo4jUser:     v.GetString(flagNeo4jUser),
		Neo4jPassword: v.GetString(flagNeo4jPassword),
		Account:       v.GetString(flagAccount),
	}
}

func run(ctx context.Context, cfg config.Config, out io.Writer) error {
	opts := audit.Options{
		BaseURL:     cfg.BaseURL,
		PageSize:    cfg.PageSize,
		MaxPages:    cfg.MaxPages,
		ListWorkers: cfg.ListWorkers,
	}

	switch cfg.Source {
	case config.SourceNeo4j:
		neo4jStorage, err := storage.NewNeo4jStorage(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Account, cfg.PageSize)
		if err != nil {
			return err
		}
		defer func() {
			if err := neo4jStorage.Close(ctx); err != nil {
				logrus.Warnf("close neo4j storage: %v", err)
			}
		}()
		if err := neo4jStorage.Ping(ctx); err != nil {
			return fmt.Errorf("connect to neo4j: %w", err)
		}
		return app.NewApp(neo4jStorage, opts, out).Run(ctx)

	default:
		token, err := config.ReadToken(cfg.TokenFile)
		if err != nil {
			logrus.WithField("path", cfg.TokenFile).Info("unable to read token file")
			return err
		}
		client, err := clients.NewMastodonClient(cfg.BaseURL, token, cfg.PageSize)
		if err != nil {
			return err
		}
		return app.NewApp(client, opts, out).Run(ctx)
	}
}

// Execute runs the command against os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand(os.Stdout)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
