package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"remedy/internal/fix"
)

// Summary renders one row per unit and a closing total line.
func Summary(w io.Writer, results []*fix.Result) error {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true)
	name := r.NewStyle().Width(24)
	cell := r.NewStyle().Width(12)
	ok := r.NewStyle().Foreground(lipgloss.Color("2")).Width(12)
	failed := r.NewStyle().Foreground(lipgloss.Color("1")).Width(12)
	muted := r.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder
	b.WriteString(header.Render(name.Render("unit") + cell.Render("status") + cell.Render("iterations") +
		cell.Render("bulk") + cell.Render("single") + cell.Render("unresolved")))
	b.WriteString("\n")

	fixed, failures := 0, 0
	for _, res := range results {
		if res == nil {
			continue
		}
		status := ok
		if !res.Succeeded() {
			status = failed
			failures++
		}
		bulk, single := 0, 0
		if res.Ledger != nil {
			bulk = sum(res.Ledger.Bulk())
			single = sum(res.Ledger.Single())
		}
		fixed += bulk + single
		b.WriteString(name.Render(truncate(unitName(res), 23)))
		b.WriteString(status.Render(res.Status.String()))
		b.WriteString(cell.Render(fmt.Sprint(res.Iterations)))
		b.WriteString(cell.Render(fmt.Sprint(bulk)))
		b.WriteString(cell.Render(fmt.Sprint(single)))
		b.WriteString(cell.Render(fmt.Sprint(len(res.Unresolved))))
		b.WriteString("\n")
		if res.Err != nil && !res.Succeeded() {
			b.WriteString(muted.Render("  " + res.Err.Error()))
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "%d units, %d fixed, %d failed\n", countUnits(results), fixed, failures)
	_, err := io.WriteString(w, b.String())
	return err
}

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

func countUnits(results []*fix.Result) int {
	n := 0
	for _, res := range results {
		if res != nil {
			n++
		}
	}
	return n
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
