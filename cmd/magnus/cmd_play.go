package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/magnus/internal/delivery"
)

func init() {
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <song or video query>",
	Short: "Resolve a song or video query to a playable YouTube link",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		ctx := cmd.Context()
		pipelines, _, err := buildStack(ctx, cfg)
		if err != nil {
			return err
		}

		reply := pipelines.PlayByQuery(ctx, strings.Join(args, " "))
		fmt.Fprintln(os.Stdout, delivery.Render(reply))
		return nil
	},
}
