package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"psitool/internal/core"
)

type presenter struct {
	out   io.Writer
	head  *color.Color
	label *color.Color
	dim   *color.Color
	id    *color.Color
}

func newPresenter(out io.Writer, noColor bool) *presenter {
	p := &presenter{
		out:   out,
		head:  color.New(color.FgYellow, color.Bold),
		label: color.New(color.FgCyan),
		dim:   color.New(color.FgHiBlack),
		id:    color.New(color.FgGreen, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.head, p.label, p.dim, p.id} {
			c.DisableColor()
		}
	}
	return p
}

func (p *presenter) counts(sel core.Selection) {
	for _, c := range sel.Counts {
		fmt.Fprintf(p.out, "%s %s: %d eligible\n", p.label.Sprint("pool"), c.Pool.Name, c.Count)
	}
	fmt.Fprintf(p.out, "%s %d\n", p.label.Sprint("total eligible:"), sel.Total())
}

func (p *presenter) announce(sel core.Selection) {
	fmt.Fprintf(p.out, "Target: %s\n", p.id.Sprint(sel.Target.ID.String()))
	fmt.Fprintln(p.out, "Press ENTER to see target.")
	fmt.Fprintln(p.out, "Remote viewer, begin.")
}

func (p *presenter) target(sel core.Selection) {
	t := sel.Target
	sep := strings.Repeat("=", 60)
	fmt.Fprintln(p.out, p.dim.Sprint(sep))
	fmt.Fprintf(p.out, "%s %s\n", p.head.Sprint("Target"), t.ID)
	fmt.Fprintf(p.out, "%s %s\n", p.label.Sprint("Pool:"), sel.Pool.Name)
	fmt.Fprintf(p.out, "%s %s\n", p.label.Sprint("Path:"), t.Path)
	fmt.Fprintf(p.out, "%s %s\n", p.label.Sprint("Type:"), t.Type)
	if t.MetaPath != "" {
		for _, m := range t.IterMeta() {
			if m.Value == "" {
				continue
			}
			fmt.Fprintf(p.out, "%s %s\n", p.label.Sprint(m.Key+":"), m.Value)
		}
	}
	if len(t.Frontloading) > 0 {
		fmt.Fprintf(p.out, "%s %s\n", p.label.Sprint("Frontloading:"), strings.Join(t.Frontloading, ", "))
	}
	fmt.Fprintln(p.out, p.dim.Sprint(sep))
}
