package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/magnus/internal/config"
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

		fmt.Println("Magnus Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		// 1. Gemini API key
		cfg.Gemini.APIKey = promptInput(scanner, "Gemini API key", cfg.Gemini.APIKey)

		// 2. Gemini model name
		cfg.Gemini.Model = promptInput(scanner, "Gemini model name", cfg.Gemini.Model)

		// 3. Timezone
		cfg.Timezone = promptInput(scanner, "Timezone (IANA name)", cfg.Timezone)

		// 4. Telegram bot token (optional)
		cfg.Telegram.Token = promptInput(scanner, "Telegram bot token (optional)", cfg.Telegram.Token)

		// 5. HTTP listen address (optional)
		cfg.HTTP.Addr = promptInput(scanner, "HTTP listen address (empty to disable)", cfg.HTTP.Addr)

		// 6. User name for personalization (optional)
		cfg.Profile.Name = promptInput(scanner, "Your name (optional)", cfg.Profile.Name)

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		return nil
	},
}

// promptInput displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
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
