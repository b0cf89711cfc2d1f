// Package plan implements the plan-file writer (spec.md §6.2): one
// operator name per line, parenthesized, in execution order, followed by a
// "; cost = N" comment line.
package plan

import (
	"bufio"
	"fmt"
	"io"
)

// Plan is a found solution: the ordered operator names to execute, plus
// its total cost.
type Plan struct {
	Steps []string
	Cost  int64
}

// Write emits p to w as "(<operator-name>)\n" lines followed by one
// "; cost = <p.Cost>\n" line, matching the
// convention used across the classical-planning IPC format this CLI's
// --plan-output targets (spec.md §6.2).
func Write(w io.Writer, p *Plan) error {
	bw := bufio.NewWriter(w)
	for _, step := range p.Steps {
		if _, err := fmt.Fprintf(bw, "(%s)\n", step); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "; cost = %d\n", p.Cost); err != nil {
		return err
	}
	return bw.Flush()
}
