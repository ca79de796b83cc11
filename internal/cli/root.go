// Package cli wires configuration, authentication, the remote store and
// the state manager into the knowdrive command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Rrens/knowledge-drive/internal/auth"
	"github.com/Rrens/knowledge-drive/internal/cache"
	"github.com/Rrens/knowledge-drive/internal/config"
	"github.com/Rrens/knowledge-drive/internal/drive"
	"github.com/Rrens/knowledge-drive/internal/llm"
	"github.com/Rrens/knowledge-drive/internal/llm/gemini"
	"github.com/Rrens/knowledge-drive/internal/llm/openai"
	"github.com/Rrens/knowledge-drive/internal/pdfcodec"
	"github.com/Rrens/knowledge-drive/internal/service"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "knowdrive",
	Short:         "Chat with a knowledge base stored in Google Drive",
	Long:          "knowdrive keeps knowledge documents and conversation logs in a Google Drive folder and answers questions about them with a generation model.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return setupLogging(cfg.Logging)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, chatCmd, filesCmd, convosCmd)
}

func setupLogging(cfg config.LoggingConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	var console io.Writer = os.Stderr
	if cfg.Format == "console" {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	sink := console
	if cfg.File != "" {
		rotating, err := rotatelogs.New(
			cfg.File+".%Y%m%d",
			rotatelogs.WithLinkName(cfg.File),
			rotatelogs.WithMaxAge(cfg.MaxAge),
			rotatelogs.WithRotationTime(cfg.RotationTime),
		)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		sink = io.MultiWriter(console, rotating)
	}

	log.Logger = zerolog.New(sink).With().Timestamp().Logger()
	return nil
}

func newAuthSession() *auth.Session {
	return auth.NewSession(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.TokenFile)
}

// buildManager assembles a ready-to-use state manager. The returned
// cleanup function closes the text cache, if one was opened.
func buildManager(ctx context.Context, onPhase func(string)) (*service.Manager, func(), error) {
	session := newAuthSession()
	ts, err := session.TokenSource(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("not signed in, run 'knowdrive login' first: %w", err)
	}

	store, err := drive.NewStore(ctx, ts, cfg.Drive.FolderName)
	if err != nil {
		return nil, nil, err
	}

	router := llm.NewRouter(cfg.LLM.DefaultProvider)
	router.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
	router.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI))

	provider, err := router.GetProvider("")
	if err != nil {
		return nil, nil, err
	}
	model := cfg.LLM.Gemini.Model
	if provider.Name() == "openai" {
		model = cfg.LLM.OpenAI.Model
	}
	client := llm.NewClient(provider, model)

	opts := []service.Option{
		service.WithLegacyLogFormat(cfg.Storage.LegacyLogFormat),
	}
	if onPhase != nil {
		opts = append(opts, service.WithPhaseFunc(onPhase))
	}

	cleanup := func() {}
	if cfg.Cache.Enabled {
		c, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Cache.Path).Msg("text cache unavailable, continuing without it")
		} else {
			opts = append(opts, service.WithCache(c))
			cleanup = func() { c.Close() }
		}
	}

	return service.NewManager(store, client, pdfcodec.New(), opts...), cleanup, nil
}
