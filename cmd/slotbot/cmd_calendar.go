package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/user/slotbot/internal/calendar"
)

func init() {
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.Flags().String("listen", "", "listen address (defaults to calendar.base_url port)")
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Start the standalone calendar facade server",
	Long:  "Serves the booking HTTP API over Google Calendar so the assistant can run against it in remote mode.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		listen, _ := cmd.Flags().GetString("listen")
		if listen == "" {
			listen = ":8000"
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		backend, err := calendar.NewGoogleBackend(ctx, cfg.Calendar.CredentialsFile, cfg.Calendar.TokenFile, cfg.Calendar.CalendarID)
		if err != nil {
			return fmt.Errorf("create calendar backend: %w", err)
		}

		srv := calendar.NewServer(backend)
		httpServer := &http.Server{
			Addr:    listen,
			Handler: srv,
		}

		go func() {
			slog.Info("calendar server started", "listen", listen, "calendar_id", cfg.Calendar.CalendarID)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("calendar server error", "error", err)
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		slog.Info("shutting down calendar server")
		return httpServer.Close()
	},
}
