package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Dimaray2024/xiaona/internal/llm"
	"github.com/Dimaray2024/xiaona/internal/store"
	"github.com/Dimaray2024/xiaona/internal/tutor"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model requests",
}

// openStore opens only the database; the llm commands need no provider.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, dbPath, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(dbPath, store.WithQuota(cfg.Storage.QuotaBytes))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No model requests recorded.")
			return nil
		}

		t := newTable("ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 4, WidthMax: 28},
			{Number: 5, Align: text.AlignRight},
			{Number: 6, Align: text.AlignRight},
			{Number: 7, Align: text.AlignRight},
			{Number: 8, Align: text.AlignCenter},
		})
		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			t.AppendRow(table.Row{
				e.ID,
				e.Timestamp.Local().Format(timeLayout),
				e.Purpose,
				e.Model,
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			})
		}
		return renderTable(cmd, cmd.OutOrStdout(), t)
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one model request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		out := cmd.OutOrStdout()
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.Style().Options.SeparateRows = false
		t.AppendRows([]table.Row{
			{"ID", e.ID},
			{"Time", e.Timestamp.Local().Format(timeLayout)},
			{"Provider", e.Provider},
			{"Model", e.Model},
			{"Purpose", e.Purpose},
			{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
			{"Success", e.Success},
		})
		if e.ErrorMessage != "" {
			t.AppendRow(table.Row{"Error", e.ErrorMessage})
		}
		fmt.Fprintln(out, t.Render())

		sep := strings.Repeat("─", 60)
		for _, part := range []struct{ title, body string }{
			{"REQUEST", e.RequestBody},
			{"RESPONSE", e.ResponseBody},
		} {
			fmt.Fprintln(out, sep)
			fmt.Fprintln(out, part.title)
			fmt.Fprintln(out, sep)
			if part.body == "" {
				fmt.Fprintln(out, "(not captured)")
				continue
			}
			fmt.Fprintln(out, part.body)
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No model usage recorded yet.")
			return nil
		}

		fmt.Fprintln(out, "Usage by purpose")
		if err := renderTable(cmd, out, purposeTable(byPurpose)); err != nil {
			return err
		}

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Estimated cost (USD)")
		t, unknown := costTable(byModel)
		if err := renderTable(cmd, out, t); err != nil {
			return err
		}
		if len(unknown) > 0 {
			fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
		}
		return nil
	},
}

func purposeTable(usage []store.LLMUsage) table.Writer {
	t := newTable("Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
	var calls, in, outTok int
	for _, u := range usage {
		t.AppendRow(table.Row{u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens + u.OutputTokens, u.AvgLatencyMs})
		calls += u.Calls
		in += u.InputTokens
		outTok += u.OutputTokens
	}
	t.AppendFooter(table.Row{"Total", calls, in, outTok, in + outTok, ""})
	return t
}

// costTable prices each model. Models without a known price are listed with
// "?" and returned so the caller can name them.
func costTable(usage []store.LLMUsage) (table.Writer, []string) {
	t := newTable("Model", "Calls", "Input", "Output", "Cost")
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight}})

	var total float64
	var unknown []string
	for _, u := range usage {
		cost := llm.LookupCost(u.Model)
		if cost == nil {
			unknown = append(unknown, u.Model)
			t.AppendRow(table.Row{u.Model, u.Calls, u.InputTokens, u.OutputTokens, "?"})
			continue
		}
		c := cost.Cost(u.InputTokens, u.OutputTokens)
		total += c
		t.AppendRow(table.Row{u.Model, u.Calls, u.InputTokens, u.OutputTokens, formatCost(c)})
	}
	label := "Total"
	if len(unknown) > 0 {
		label = "Total (partial)"
	}
	t.AppendFooter(table.Row{label, "", "", "", formatCost(total)})
	return t, unknown
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", fmt.Sprintf("Only show one purpose (%s, %s, %s, %s)",
		tutor.PurposeAnalysis, tutor.PurposeGrading, tutor.PurposeChat, tutor.PurposePractice))
	addFormatFlag(llmListCmd)
	addFormatFlag(llmStatsCmd)

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
