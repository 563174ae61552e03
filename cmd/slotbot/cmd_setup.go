package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/slotbot/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("Slotbot Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		cfg.LLM.Provider = promptInput(scanner, "LLM provider (openai or gemini)", cfg.LLM.Provider)
		switch cfg.LLM.Provider {
		case "gemini":
			cfg.Gemini.APIKey = promptInput(scanner, "Gemini API key", cfg.Gemini.APIKey)
			cfg.Gemini.Model = promptInput(scanner, "Gemini model name", cfg.Gemini.Model)
		default:
			cfg.LLM.BaseURL = promptInput(scanner, "LLM base URL", cfg.LLM.BaseURL)
			cfg.LLM.APIKey = promptInput(scanner, "LLM API key", cfg.LLM.APIKey)
			cfg.LLM.Model = promptInput(scanner, "LLM model name", cfg.LLM.Model)
		}

		cfg.Calendar.Mode = promptInput(scanner, "Calendar mode (local or remote)", cfg.Calendar.Mode)
		switch cfg.Calendar.Mode {
		case "remote":
			cfg.Calendar.BaseURL = promptInput(scanner, "Calendar server base URL", cfg.Calendar.BaseURL)
		default:
			cfg.Calendar.CredentialsFile = promptInput(scanner, "Google credentials file", cfg.Calendar.CredentialsFile)
			cfg.Calendar.TokenFile = promptInput(scanner, "Google token file", cfg.Calendar.TokenFile)
			cfg.Calendar.CalendarID = promptInput(scanner, "Calendar ID", cfg.Calendar.CalendarID)
		}

		cfg.Telegram.Token = promptInput(scanner, "Telegram bot token (optional)", cfg.Telegram.Token)

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		return nil
	},
}

// promptInput displays a labeled prompt with a default value and reads user
// input. If the user enters nothing, the default is returned.
func promptInput(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}
