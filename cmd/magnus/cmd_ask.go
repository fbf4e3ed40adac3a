package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/magnus/internal/config"
	"github.com/user/magnus/internal/delivery"
	"github.com/user/magnus/internal/gateway"
	"github.com/user/magnus/internal/pipeline"
	"github.com/user/magnus/internal/prompt"
	"github.com/user/magnus/internal/state"
	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
	"github.com/user/magnus/pkg/llm/gemini"
)

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().String("session", "cli:default", "session key to converse in")
	askCmd.Flags().String("tool", "", `tool to pin (e.g. "Web search", "Team of Experts")`)
}

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Send one prompt and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		sessionKey, _ := cmd.Flags().GetString("session")
		toolName, _ := cmd.Flags().GetString("tool")

		ctx := cmd.Context()
		pipelines, sessions, err := buildStack(ctx, cfg)
		if err != nil {
			return err
		}

		gw := gateway.New(sessions, int64(cfg.MaxConcurrent))
		gw.Queue.SetProcessor(pipelines.ProcessRun)
		gw.Start(ctx)
		defer gw.Stop()

		done := make(chan *types.Message, 1)
		event := &types.InboundEvent{
			Source:     "cli",
			SessionKey: types.SessionKey(sessionKey),
			Text:       strings.Join(args, " "),
			PinnedTool: types.ParseTool(toolName),
		}
		if err := gw.HandleInbound(ctx, event, gateway.WithOnComplete(func(reply *types.Message) {
			done <- reply
		})); err != nil {
			return err
		}

		select {
		case reply := <-done:
			fmt.Fprintln(os.Stdout, delivery.Render(reply))
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	},
}

// buildStack creates the pipelines and session store for one-off commands.
func buildStack(ctx context.Context, cfg *config.Config) (*pipeline.Pipelines, *state.SessionStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	sessions := state.NewSessionStore(cfg.DataDir)
	attachments := state.NewAttachmentStore(cfg.DataDir)

	provider, err := gemini.New(ctx, &llm.Config{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.Model,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create gemini client: %w", err)
	}

	engine, err := prompt.New(cfg.Gemini.MaxContextTokens, cfg.Gemini.OutputReserve)
	if err != nil {
		return nil, nil, fmt.Errorf("create prompt engine: %w", err)
	}

	pipelines := pipeline.New(provider, sessions, attachments, engine, &cfg.Profile, cfg.Timezone, slog.Default())
	return pipelines, sessions, nil
}
