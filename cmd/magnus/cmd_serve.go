package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/magnus/internal/delivery"
	"github.com/user/magnus/internal/gateway"
	"github.com/user/magnus/internal/httpapi"
	"github.com/user/magnus/internal/pipeline"
	"github.com/user/magnus/internal/prompt"
	"github.com/user/magnus/internal/scheduler"
	"github.com/user/magnus/internal/state"
	"github.com/user/magnus/internal/telegram"
	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
	"github.com/user/magnus/pkg/llm/gemini"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the magnus daemon",
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "magnus.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Write PID file
	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores
	sessions := state.NewSessionStore(cfg.DataDir)
	attachments := state.NewAttachmentStore(cfg.DataDir)
	taskStore := state.NewTaskStore(filepath.Join(cfg.DataDir, "tasks.json"))

	// Generation backend
	provider, err := gemini.New(ctx, &llm.Config{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.Model,
	})
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}

	// Prompt engine
	engine, err := prompt.New(cfg.Gemini.MaxContextTokens, cfg.Gemini.OutputReserve)
	if err != nil {
		return fmt.Errorf("create prompt engine: %w", err)
	}

	// Pipelines
	pipelines := pipeline.New(provider, sessions, attachments, engine, &cfg.Profile, cfg.Timezone, slog.Default())

	// Gateway
	gw := gateway.New(sessions, int64(cfg.MaxConcurrent))
	gw.Queue.SetProcessor(pipelines.ProcessRun)

	gw.Start(ctx)
	defer gw.Stop()

	slog.Info("magnus started",
		"data_dir", cfg.DataDir,
		"log_level", cfg.LogLevel,
		"max_concurrent", cfg.MaxConcurrent,
		"gemini_model", cfg.Gemini.Model,
		"pid_file", pidPath,
	)

	// Delivery registry
	deliveryReg := delivery.NewRegistry()

	// Telegram adapter
	if cfg.Telegram.Token != "" {
		adapter, err := telegram.New(cfg.Telegram.Token, gw, sessions)
		if err != nil {
			return fmt.Errorf("create telegram adapter: %w", err)
		}
		go adapter.Start(ctx)
		slog.Info("telegram adapter started")

		// Register telegram delivery for cron replies
		deliveryReg.Register("telegram:", adapter.Deliver)
	} else {
		slog.Warn("telegram adapter disabled (no token)")
	}

	// Helper: synchronously process one event through the gateway.
	processChat := func(ctx context.Context, event *types.InboundEvent) (*types.Message, error) {
		done := make(chan *types.Message, 1)
		if err := gw.HandleInbound(ctx, event, gateway.WithOnComplete(func(reply *types.Message) {
			done <- reply
		})); err != nil {
			return nil, err
		}
		select {
		case reply := <-done:
			return reply, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Scheduler
	sched := scheduler.New(taskStore, func(sessionKey types.SessionKey, prompt string, tool types.Tool) {
		reply, err := processChat(ctx, &types.InboundEvent{
			Source:     "task",
			SessionKey: sessionKey,
			UserID:     "system",
			Text:       prompt,
			PinnedTool: tool,
		})
		if err != nil {
			slog.Error("cron task failed", "session_key", sessionKey, "error", err)
			return
		}
		if err := deliveryReg.Deliver(sessionKey, reply); err != nil {
			slog.Error("cron delivery failed", "session_key", sessionKey, "error", err)
		}
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()
	slog.Info("scheduler started")

	// HTTP API server
	if cfg.HTTP.Addr != "" {
		apiSrv := httpapi.NewServer(taskStore, processChat, sessions, attachments)
		httpServer := &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: apiSrv,
		}
		go func() {
			slog.Info("http server started", "addr", cfg.HTTP.Addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("http server error", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			httpServer.Close()
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan
		if sig == syscall.SIGHUP {
			slog.Info("received SIGHUP, restarting")
			execPath, err := os.Executable()
			if err != nil {
				slog.Error("failed to get executable path", "error", err)
				continue
			}
			// Clean up PID file before re-exec
			os.Remove(pidPath)
			if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
				slog.Error("failed to re-exec", "error", err)
				// Re-write PID file since we failed to re-exec
				if _, writeErr := writePIDFile(cfg.DataDir); writeErr != nil {
					slog.Error("failed to re-write PID file", "error", writeErr)
				}
				continue
			}
		}
		// SIGINT or SIGTERM
		slog.Info("shutting down", "signal", sig)
		return nil
	}
}
