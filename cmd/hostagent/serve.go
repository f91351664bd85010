package main

import (
	"encoding/json"
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/cksruf91/a2a-server-client/config"
	"github.com/cksruf91/a2a-server-client/host"
	"github.com/cksruf91/a2a-server-client/logging"
	"github.com/cksruf91/a2a-server-client/model"
	"github.com/cksruf91/a2a-server-client/model/anthropic"
	"github.com/cksruf91/a2a-server-client/model/openai"
	"github.com/cksruf91/a2a-server-client/server"
)

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the host over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			metrics := logging.NewSlogLogger(parseLevel(cfg.Log.Level), cfg.Log.Format, false)
			logger := metrics.WithComponent("host")

			llm, err := buildModel(cfg.Model)
			if err != nil {
				return err
			}

			h := host.NewHostAgent(cfg.AppName, llm, cfg.AgentURLs, cfg.PromptTemplate, func(o *host.Options) {
				o.WindowSize = cfg.WindowSize
				o.MaxToolRounds = cfg.MaxToolRounds
				o.Logger = logger
				o.Metrics = metrics
			})

			srv := server.New(h, func(o *server.Options) {
				o.Logger = logger
			})
			return srv.ListenAndServe(cfg.ListenAddr)
		},
	}
}

// newCardsCmd prints the discovered capability catalog and exits, useful to
// verify specialist endpoints before serving.
func newCardsCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "Fetch and print the specialist capability cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			llm := model.NewMockModel("none", "mock")
			h := host.NewHostAgent(cfg.AppName, llm, cfg.AgentURLs, cfg.PromptTemplate)
			cards, err := h.Cards(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cards)
		},
	}
}

func buildModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.ID != "" {
				o.Model = cfg.ID
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.ID != "" {
				o.Model = anthropicsdk.Model(cfg.ID)
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
		}), nil
	case "mock":
		return model.NewMockModel(cfg.ID, "mock"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func parseLevel(s string) logging.LogLevel {
	switch s {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
