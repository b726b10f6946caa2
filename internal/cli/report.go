package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joeycumines/go-syncscope/internal/stress"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	passMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).SetString("✓")
	failMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).SetString("✗")
)

// renderReport writes a human-readable summary of r, styled if requested.
func renderReport(w io.Writer, r *stress.Result, styled bool) error {
	type row struct{ key, value string }
	rows := []row{
		{"primitive", r.Config.Primitive},
		{"platform", r.Config.Platform},
		{"scope", r.Config.Scope},
		{"workers", fmt.Sprint(r.Config.Workers)},
		{"iterations", fmt.Sprint(r.Config.Iterations)},
		{"operations", fmt.Sprint(r.Operations)},
		{"elapsed", r.Elapsed.String()},
		{"throughput", fmt.Sprintf("%.0f ops/s", r.Throughput())},
	}
	if r.Config.Metrics {
		m := r.Metrics
		rows = append(rows,
			row{"waits", fmt.Sprintf("%d (immediate %d, woken %d, spurious %d, timeouts %d)", m.Waits, m.Immediate, m.Woken, m.Spurious, m.Timeouts)},
			row{"parks", fmt.Sprint(m.Parks)},
			row{"notifies", fmt.Sprintf("%d (unparked %d)", m.Notifies, m.Unparked)},
			row{"park p50", m.ParkLatency.P50.String()},
			row{"park p99", m.ParkLatency.P99.String()},
			row{"park max", m.ParkLatency.Max.String()},
		)
	}

	status := "PASS"
	if !r.OK() {
		status = fmt.Sprintf("FAIL (%d invariant failures)", r.Failures)
	}

	var b strings.Builder
	if !styled {
		for _, row := range rows {
			fmt.Fprintf(&b, "%-12s %s\n", row.key, row.value)
		}
		fmt.Fprintf(&b, "%-12s %s\n", "result", status)
		if r.Err != nil {
			fmt.Fprintf(&b, "%s\n", r.Err)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(titleStyle.Render("syncstress"))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(keyStyle.Render(row.key))
		b.WriteString(row.value)
		b.WriteByte('\n')
	}
	mark := passMark
	if !r.OK() {
		mark = failMark
	}
	b.WriteString(keyStyle.Render("result"))
	b.WriteString(mark.String() + " " + status)
	if r.Err != nil {
		b.WriteByte('\n')
		b.WriteString(strings.TrimSpace(r.Err.Error()))
	}
	_, err := fmt.Fprintln(w, boxStyle.Render(b.String()))
	return err
}
