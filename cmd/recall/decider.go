package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/recall/internal/similarity"
	"github.com/fyrsmithlabs/recall/internal/workflow"
)

var (
	matchTitleStyle = lipgloss.NewStyle().Bold(true)
	matchScoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	matchPathStyle  = lipgloss.NewStyle().Faint(true)
)

// terminalDecider resolves the disambiguation prompt on the operator's
// terminal. It blocks indefinitely on input; there is no timeout.
type terminalDecider struct {
	in  io.Reader
	out io.Writer
}

func newTerminalDecider(in io.Reader, out io.Writer) *terminalDecider {
	return &terminalDecider{in: in, out: out}
}

// Decide presents the surviving matches ranked by score and reads one
// discrete choice. Anything other than u, s or c aborts.
func (d *terminalDecider) Decide(matches []similarity.Match) (workflow.Action, error) {
	fmt.Fprintln(d.out, "Similar memories found:")
	for i, m := range matches {
		fmt.Fprintf(d.out, "%d) %s %s - %s\n",
			i+1,
			matchTitleStyle.Render(m.Title),
			matchScoreStyle.Render(fmt.Sprintf("(%.2f)", m.Score)),
			matchPathStyle.Render(m.Path),
		)
	}
	fmt.Fprint(d.out, "Choose action: [u]pdate [s]upersede [c]reate [q]uit: ")

	line, err := bufio.NewReader(d.in).ReadString('\n')
	if err != nil && line == "" {
		return workflow.ActionQuit, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "u":
		return workflow.ActionUpdate, nil
	case "s":
		return workflow.ActionSupersede, nil
	case "c":
		return workflow.ActionCreate, nil
	}
	return workflow.ActionQuit, nil
}
