// commands.go
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ViniZap4/moodlog-server/domain"
	"github.com/ViniZap4/moodlog-server/kv"
	"github.com/ViniZap4/moodlog-server/stats"
)

func newRecordCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "record <Sad|Normal|Good|Happy> <note...>",
		Short: "Record how you feel right now",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mood, err := domain.ParseMood(args[0])
			if err != nil {
				return err
			}
			entry, err := domain.NewEntry(mood, strings.Join(args[1:], " "), time.Now())
			if errors.Is(err, domain.ErrEmptyNote) {
				return errors.New("please enter a note before saving")
			}
			if err != nil {
				return err
			}

			rt, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.store.Append(cmd.Context(), entry); err != nil {
				return fmt.Errorf("mood not saved: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Mood saved successfully!")
			return nil
		},
	}
}

func newHistoryCmd(open opener) *cobra.Command {
	var (
		oldestFirst bool
		format      string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded moods, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			entries := rt.store.Snapshot(cmd.Context())
			if !oldestFirst {
				entries = entries.NewestFirst()
			}
			return writeHistory(cmd.OutOrStdout(), entries, format)
		},
	}
	cmd.Flags().BoolVar(&oldestFirst, "oldest-first", false, "list in recording order")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or yaml")
	return cmd
}

func writeHistory(w io.Writer, entries domain.Log, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "No moods saved yet.")
			return err
		}
		for _, e := range entries {
			if _, err := fmt.Fprintf(w, "%s  %-6s  %q\n", e.Date.Local().Format("2006-01-02 15:04"), e.Mood, e.Note); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func newStatsCmd(open opener) *cobra.Command {
	var (
		asJSON bool
		width  int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show mood statistics as a bar chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			summary := stats.Compute(rt.store.Snapshot(cmd.Context()))
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			return stats.RenderChart(cmd.OutOrStdout(), summary, width)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().IntVar(&width, "width", 40, "chart width in cells")
	return cmd
}

func newClearCmd(open opener) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded mood",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "Are you sure you want to delete all moods? [y/N] ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			rt, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Mood history cleared!")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (postgres backend)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := open(cmd, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.cfg.Backend != kv.DriverPostgres {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to migrate for the %s backend.\n", rt.cfg.Backend)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}
