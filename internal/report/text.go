package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/scry/internal/orchestrator"
)

// WriteText writes a ProjectResult as human-readable styled text to
// the writer. Output uses lipgloss for color and formatting when the
// output is a TTY; degrades gracefully for pipes and CI.
func WriteText(w io.Writer, pr orchestrator.ProjectResult) error {
	s := DefaultStyles()
	modules := BuildModuleReports(pr)

	for i, mr := range modules {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		writeModule(w, mr, s)
	}

	if len(pr.Errors) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, s.Fail.Render("Project errors:"))
		for _, e := range pr.Errors {
			_, _ = fmt.Fprintf(w, "  %s\n", e)
		}
	}

	total := 0
	for _, mr := range modules {
		total += len(mr.Functions)
	}
	_, _ = fmt.Fprintf(w, "\n%s\n",
		s.Header.Render(fmt.Sprintf("%d module(s), %d function(s) analyzed", len(modules), total)))

	return nil
}

func writeModule(w io.Writer, mr ModuleReport, s Styles) {
	_, _ = fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s ===", mr.Module)))

	if len(mr.Functions) == 0 {
		_, _ = fmt.Fprintln(w, s.Muted.Render("    No functions analyzed."))
		return
	}

	rows := make([][]string, 0, len(mr.Functions))
	for _, fn := range mr.Functions {
		terminates := "yes"
		if !fn.Terminates {
			terminates = "no"
		}
		exc := strings.Join(fn.Exceptions, ", ")
		if fn.Dynamic {
			if exc != "" {
				exc += ", "
			}
			exc += "dynamic"
		}
		rows = append(rows, []string{fn.MFA, fn.Effect, terminates, exc})
	}

	t := table.New().
		Width(90).
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if col == 1 && row >= 0 && row < len(rows) {
				return s.TagStyle(rows[row][1][:1])
			}
			return s.TableCell
		}).
		Headers("MFA", "EFFECT", "TERMINATES", "EXCEPTIONS").
		Rows(rows...)

	_, _ = fmt.Fprintln(w, t)

	for _, fn := range mr.Functions {
		for _, errMsg := range fn.Errors {
			_, _ = fmt.Fprintf(w, "    %s: %s\n", fn.MFA, errMsg)
		}
	}
}
