package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Dimaray2024/xiaona/internal/homework"
	"github.com/Dimaray2024/xiaona/internal/markup"
	"github.com/Dimaray2024/xiaona/internal/mistakes"
	"github.com/Dimaray2024/xiaona/internal/practice"
	"github.com/Dimaray2024/xiaona/internal/ui/components"
	"github.com/Dimaray2024/xiaona/internal/ui/theme"
	"github.com/Dimaray2024/xiaona/internal/view"
)

var mistakesCmd = &cobra.Command{
	Use:   "mistakes",
	Short: "Browse the mistake log",
}

var mistakesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded mistakes",
	RunE: func(cmd *cobra.Command, args []string) error {
		subjectFlag, _ := cmd.Flags().GetString("subject")
		sortFlag, _ := cmd.Flags().GetString("sort")
		grouped, _ := cmd.Flags().GetBool("group")

		filter, err := view.ParseFilter(subjectFlag)
		if err != nil {
			return err
		}
		order, err := view.ParseSortOrder(sortFlag)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		rows := e.projector().Project(e.mistakes.All(), filter, order)
		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No mistakes recorded.")
			return nil
		}

		t := newTable("ID", "Added", "Subject", "Problem")
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, Align: text.AlignCenter},
			{Number: 4, WidthMax: 48},
		})
		if grouped {
			for _, g := range view.GroupBySubject(rows) {
				for _, r := range g.Records {
					t.AppendRow(mistakeRow(r))
				}
				t.AppendSeparator()
			}
		} else {
			for _, r := range rows {
				t.AppendRow(mistakeRow(r))
			}
		}
		t.AppendFooter(table.Row{"", "", "Total", len(rows)})
		return renderTable(cmd, cmd.OutOrStdout(), t)
	},
}

func mistakeRow(r mistakes.Record) table.Row {
	added := ""
	if ms, ok := mistakes.Timestamp(r.ID); ok {
		added = time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
	}
	return table.Row{r.ID, added, r.Subject, markup.Strip(r.ProblemDescription)}
}

var mistakesShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one mistake in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		r, ok := e.mistakes.Get(args[0])
		if !ok {
			return fmt.Errorf("mistake %s not found", args[0])
		}
		lipgloss.Fprintln(cmd.OutOrStdout(),
			components.Mistake(r.Subject, r.ProblemDescription, r.ReasonForError, r.CorrectSteps, 72))
		fmt.Fprintf(cmd.OutOrStdout(), "%d homework photo(s)\n", len(r.HomeworkImages))
		return nil
	},
}

var mistakesPracticeCmd = &cobra.Command{
	Use:   "practice ID...",
	Short: "Generate practice problems like the chosen mistakes",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		tut, err := e.requireTutor()
		if err != nil {
			return err
		}

		var sel practice.Selection
		for _, id := range args {
			if !sel.Contains(id) {
				sel.Toggle(id)
			}
		}

		out, err := practice.NewFlow(tut).Generate(cmd.Context(), &sel, e.mistakes.All())
		if errors.Is(err, practice.ErrEmptySelection) {
			return err
		}
		if err != nil {
			e.logger.Debug("practice failed", "err", err)
			return errors.New(homework.UserMessage(err, homework.MsgPracticeFailed))
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), theme.Markup.Render(out))
		return nil
	},
}

func init() {
	mistakesListCmd.Flags().StringP("subject", "s", "", "Only this subject: 语文, 数学, 英语 or 其他")
	mistakesListCmd.Flags().String("sort", string(view.DateDesc), sortHelp())
	mistakesListCmd.Flags().Bool("group", false, "Group rows by subject")
	addFormatFlag(mistakesListCmd)

	mistakesCmd.AddCommand(mistakesListCmd)
	mistakesCmd.AddCommand(mistakesShowCmd)
	mistakesCmd.AddCommand(mistakesPracticeCmd)
}

func sortHelp() string {
	opts := make([]string, len(view.SortOrders))
	for i, o := range view.SortOrders {
		opts[i] = fmt.Sprintf("%s (%s)", o.Value, o.Label)
	}
	return "Sort order: " + strings.Join(opts, ", ")
}
