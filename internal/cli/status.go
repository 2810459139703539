package cli

import (
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pterm/pterm"

	"github.com/troosts/doctranslate/internal/pipeline"
)

// printStatus renders one pipeline status line.
func printStatus(line string) {
	switch {
	case strings.HasPrefix(line, "Failed"):
		pterm.Error.Println(line)
	case strings.HasPrefix(line, "Saved"):
		pterm.Success.Println(line)
	default:
		pterm.Info.Println(line)
	}
}

// printSummary renders the per-file run summary table.
func printSummary(results []pipeline.Result) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"File", "Type", "Segments", "Batches", "Time", "Result"})

	for _, res := range results {
		outcome := "ok"
		if res.Err != nil {
			outcome = "failed: " + res.Err.Error()
		}
		tw.AppendRow(table.Row{
			res.File,
			res.Kind.String(),
			res.Segments,
			res.Batches,
			res.Elapsed.Round(10 * time.Millisecond),
			outcome,
		})
	}

	tw.SetStyle(table.StyleLight)
	tw.Render()
}
