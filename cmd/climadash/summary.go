package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/spektr-org/climadash/engine"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")).MarginTop(1)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Italic(true)
	bulletStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func newSummaryCmd(a *app) *cobra.Command {
	var (
		filters filterFlags
		format  string
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the summary panel and key insights for a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.loadTable()
			if err != nil {
				return err
			}
			f, err := filters.resolve(cmd, t.Bounds())
			if err != nil {
				return err
			}
			d := engine.BuildDashboard(t.View(), t.Filter(f),
				engine.WithLogger(a.logger),
				engine.WithPreviewLimit(10))

			out := cmd.OutOrStdout()
			switch format {
			case "json", "pretty":
				return writeJSON(out, d, format)
			case "text":
				writeSummary(out, d, isTerminal(out))
				return nil
			default:
				return fmt.Errorf("unknown format %q (want text, json or pretty)", format)
			}
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, pretty")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// writeSummary prints the sidebar content. Styling is applied only on a TTY.
func writeSummary(w io.Writer, d *engine.Dashboard, styled bool) {
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	b.WriteString(style(titleStyle, "Climate Change Dashboard"))
	b.WriteString("\n")

	section := func(title string, lines []string) {
		b.WriteString(style(headingStyle, title))
		b.WriteString("\n")
		for _, l := range lines {
			b.WriteString(style(bulletStyle, "  • "))
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	section("Summary", d.SummaryLines)
	section("Key Insights", d.InsightLines)

	if d.Notice != "" {
		b.WriteString("\n")
		b.WriteString(style(noticeStyle, d.Notice))
		b.WriteString("\n")
	}
	fmt.Fprint(w, b.String())
}
