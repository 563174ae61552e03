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
	"github.com/user/slotbot/internal/agent"
	"github.com/user/slotbot/internal/calendar"
	"github.com/user/slotbot/internal/chatapi"
	"github.com/user/slotbot/internal/delivery"
	"github.com/user/slotbot/internal/gateway"
	"github.com/user/slotbot/internal/prompt"
	"github.com/user/slotbot/internal/scheduler"
	"github.com/user/slotbot/internal/state"
	"github.com/user/slotbot/internal/telegram"
	"github.com/user/slotbot/internal/types"
	"github.com/user/slotbot/pkg/llm"
	"github.com/user/slotbot/pkg/llm/gemini"
	"github.com/user/slotbot/pkg/llm/openai"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the slotbot daemon",
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "slotbot.pid")
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

	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores
	sessions := state.NewSessionStore(cfg.DataDir)
	turns := state.NewTurnStore(cfg.DataDir)
	slots := state.NewSlotStore(cfg.DataDir)
	taskStore := state.NewTaskStore(filepath.Join(cfg.DataDir, "tasks.json"))

	// LLM provider
	var provider llm.Provider
	switch cfg.LLM.Provider {
	case "gemini":
		client, err := gemini.New(ctx, &llm.Config{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
		if err != nil {
			return fmt.Errorf("create gemini client: %w", err)
		}
		defer client.Close()
		provider = client
	default:
		provider = openai.New(&llm.Config{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
	}

	// Prompt engine
	engine, err := prompt.New(cfg.LLM.Model, cfg.LLM.MaxContextTokens, cfg.LLM.OutputReserve)
	if err != nil {
		return fmt.Errorf("create prompt engine: %w", err)
	}

	// Calendar
	var cal agent.CalendarService
	switch cfg.Calendar.Mode {
	case "remote":
		cal = calendar.NewClient(cfg.Calendar.BaseURL)
	default:
		backend, err := calendar.NewGoogleBackend(ctx, cfg.Calendar.CredentialsFile, cfg.Calendar.TokenFile, cfg.Calendar.CalendarID)
		if err != nil {
			return fmt.Errorf("create calendar backend: %w", err)
		}
		cal = calendar.NewLocal(backend)
	}

	// Orchestrator
	orch := agent.New(sessions, turns, slots, provider, engine, cal, slog.Default())

	// Gateway
	gw := gateway.New(sessions, int64(cfg.MaxConcurrent))
	gw.Queue.SetProcessor(func(run *gateway.Run) error {
		replies, err := orch.ProcessMessage(run.Ctx, run.ID, run.Message)
		if err != nil {
			return err
		}
		if run.OnComplete != nil {
			for _, t := range replies {
				run.OnComplete(t.Text)
			}
		}
		return nil
	})

	gw.Start(ctx)
	defer gw.Stop()

	slog.Info("slotbot started",
		"data_dir", cfg.DataDir,
		"log_level", cfg.LogLevel,
		"max_concurrent", cfg.MaxConcurrent,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
		"calendar_mode", cfg.Calendar.Mode,
		"pid_file", pidPath,
	)

	// Delivery registry
	deliveryReg := delivery.NewRegistry()

	// Telegram adapter
	if cfg.Telegram.Token != "" {
		adapter, err := telegram.New(cfg.Telegram.Token, gw, turns, sessions)
		if err != nil {
			return fmt.Errorf("create telegram adapter: %w", err)
		}
		go adapter.Start(ctx)
		slog.Info("telegram adapter started")

		deliveryReg.Register("telegram:", func(sessionKey, message string) error {
			return adapter.SendTo(sessionKey, message)
		})
	} else {
		slog.Warn("telegram adapter disabled (no token)")
	}

	// Synchronous message path used by the web API and scheduled tasks. These
	// runs bypass the queue so the caller gets the replies back in one call.
	processMessage := func(source, sessionKey, text string) ([]string, error) {
		replies, err := orch.ProcessMessage(ctx, types.NewRunID(), &types.InboundMessage{
			Source:     source,
			SessionKey: types.SessionKey(sessionKey),
			UserID:     "system",
			Text:       text,
		})
		if err != nil {
			return nil, err
		}
		texts := make([]string, 0, len(replies))
		for _, t := range replies {
			texts = append(texts, t.Text)
		}
		return texts, nil
	}

	// Scheduler
	sched := scheduler.New(taskStore, func(sessionKey, taskPrompt string) {
		replies, err := processMessage("task", sessionKey, taskPrompt)
		if err != nil {
			slog.Error("cron task failed", "session_key", sessionKey, "error", err)
			return
		}
		for _, reply := range replies {
			if err := deliveryReg.Deliver(sessionKey, reply); err != nil {
				slog.Error("cron delivery failed", "session_key", sessionKey, "error", err)
				return
			}
		}
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()
	slog.Info("scheduler started")

	// Chat API server
	apiSrv := chatapi.NewServer(taskStore, func(sessionKey, message string) ([]string, error) {
		return processMessage("web", sessionKey, message)
	}, sessions, turns)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apiSrv,
	}
	go func() {
		slog.Info("chat API server started", "listen", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("chat API server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

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
			os.Remove(pidPath)
			if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
				slog.Error("failed to re-exec", "error", err)
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
