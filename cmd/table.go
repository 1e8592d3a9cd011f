package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// newTable returns a writer in the light box style used by every listing.
func newTable(header ...any) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}

// renderTable writes t as a box table, or as Markdown when the command's
// --format flag asks for it.
func renderTable(cmd *cobra.Command, w io.Writer, t table.Writer) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "", "table":
		_, err := fmt.Fprintln(w, t.Render())
		return err
	case "markdown", "md":
		_, err := fmt.Fprintln(w, t.RenderMarkdown())
		return err
	default:
		return fmt.Errorf("unknown format %q (want table or markdown)", format)
	}
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", "table", "Output format: table or markdown")
}
