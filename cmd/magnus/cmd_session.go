package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/magnus/internal/state"
	"github.com/user/magnus/internal/types"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionListCmd, sessionClearCmd, sessionPersonalityCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessions := state.NewSessionStore(cfg.DataDir)

		ctx := context.Background()
		list, err := sessions.List(ctx)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}

		if len(list) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKEY\tTITLE\tPERSONALITY\tMESSAGES\tCREATED")
		for _, s := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				s.ID,
				s.Key,
				s.Title,
				s.Personality,
				len(s.History),
				s.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <id|all>",
	Short: "Clear a session or all sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessions := state.NewSessionStore(cfg.DataDir)
		ctx := context.Background()

		if args[0] == "all" {
			list, err := sessions.List(ctx)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			for _, s := range list {
				if err := sessions.Delete(ctx, s.ID); err != nil {
					return fmt.Errorf("delete session %s: %w", s.ID, err)
				}
			}
			fmt.Println("All sessions cleared.")
			return nil
		}

		if err := sessions.Delete(ctx, types.SessionID(args[0])); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Session %s cleared.\n", args[0])
		return nil
	},
}

var sessionPersonalityCmd = &cobra.Command{
	Use:   "personality <id> <name>",
	Short: "Set a session's personality",
	Long: `Set the assistant personality for a session. Available:
Default, Formal Advisor, Friendly Mentor, Coding Wizard, Comedian.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessions := state.NewSessionStore(cfg.DataDir)

		p := types.Personality(args[1])
		switch p {
		case types.PersonalityDefault, types.PersonalityFormalAdvisor,
			types.PersonalityFriendlyMentor, types.PersonalityCodingWizard,
			types.PersonalityComedian:
		default:
			return fmt.Errorf("unknown personality: %s", args[1])
		}

		if err := sessions.SetPersonality(context.Background(), types.SessionID(args[0]), p); err != nil {
			return fmt.Errorf("set personality: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Session %s personality set to %q.\n", args[0], args[1])
		return nil
	},
}
