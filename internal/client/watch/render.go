package watch

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/crowdbid/internal/api"
	"github.com/dmitrijs2005/crowdbid/internal/server/rounds"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	clearScreen  = "\x1b[H\x1b[2J"
	hiddenMark   = "***"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	carryStyle  = lipgloss.NewStyle().Faint(true)
	hiddenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	reachStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// Renderer draws the round table to a writer. On a terminal it clears the
// screen first and fits the table to the terminal width.
type Renderer struct {
	out   io.Writer
	width func() int
	clear bool
}

// NewRenderer renders to f, detecting whether f is a terminal.
func NewRenderer(f *os.File) *Renderer {
	fd := int(f.Fd())
	tty := term.IsTerminal(fd)
	return &Renderer{
		out:   f,
		clear: tty,
		width: func() int {
			if !tty {
				return defaultWidth
			}
			w, _, err := term.GetSize(fd)
			if err != nil || w <= 0 {
				return defaultWidth
			}
			return w
		},
	}
}

func (r *Renderer) Render(st *api.State) error {
	var b strings.Builder
	if r.clear {
		b.WriteString(clearScreen)
	}
	b.WriteString(Table(st, r.width()))
	b.WriteString("\n")
	_, err := io.WriteString(r.out, b.String())
	return err
}

// Table formats st as text no wider than width where possible. When the
// rounds do not fit, the oldest are left out.
func Table(st *api.State, width int) string {
	var lines []string

	title := st.Auction.Topic
	if title == "" {
		title = "Auction " + st.Auction.Token
	}
	lines = append(lines, titleStyle.Render(title))
	if st.Status.Reached {
		lines = append(lines, reachStyle.Render(st.Status.Text))
	} else {
		lines = append(lines, st.Status.Text)
	}
	lines = append(lines, roundLine(st), "")

	nameW := len("Bidder")
	for _, b := range st.Bidders {
		nameW = max(nameW, lipgloss.Width(b.Name))
	}
	colW := len(fmt.Sprintf("R%d", st.MaxRound))
	for _, s := range st.Sums {
		if s.Sum != nil {
			colW = max(colW, len(s.Sum.StringFixed(2)))
		}
	}
	for _, b := range st.Bidders {
		for _, c := range b.Cells {
			colW = max(colW, lipgloss.Width(cellText(c)))
		}
	}
	colW += 2

	first := 1
	if fit := (width - nameW) / colW; fit >= 1 && fit < st.MaxRound {
		first = st.MaxRound - fit + 1
	}

	name := lipgloss.NewStyle().Width(nameW)
	col := lipgloss.NewStyle().Width(colW).Align(lipgloss.Right)

	var hdr strings.Builder
	hdr.WriteString(headerStyle.Inherit(name).Render("Bidder"))
	for r := first; r <= st.MaxRound; r++ {
		hdr.WriteString(headerStyle.Inherit(col).Render(fmt.Sprintf("R%d", r)))
	}
	lines = append(lines, hdr.String())

	for _, b := range st.Bidders {
		var row strings.Builder
		row.WriteString(name.Render(b.Name))
		for r := first; r <= st.MaxRound; r++ {
			row.WriteString(col.Render(styledCell(cellAt(b, r))))
		}
		lines = append(lines, row.String())
	}

	var sums strings.Builder
	sums.WriteString(headerStyle.Inherit(name).Render("Sum"))
	for r := first; r <= st.MaxRound; r++ {
		sums.WriteString(col.Render(sumText(st, r)))
	}
	lines = append(lines, sums.String())

	return strings.Join(lines, "\n")
}

func roundLine(st *api.State) string {
	switch {
	case st.BidderCount == 0:
		return "No bidders yet"
	case st.RoundComplete:
		return fmt.Sprintf("Round %d closed, round %d opens with the next bid", st.MaxRound, st.CurrentRound)
	default:
		return fmt.Sprintf("Round %d open, %d of %d bidders missing", st.CurrentRound, st.MissingCount, st.BidderCount)
	}
}

func cellAt(b api.Bidder, round int) api.Cell {
	for _, c := range b.Cells {
		if c.Round == round {
			return c
		}
	}
	return api.Cell{Round: round}
}

func cellText(c api.Cell) string {
	switch c.Kind {
	case rounds.Hidden:
		return hiddenMark
	case rounds.Committed:
		if c.Value != nil {
			return c.Value.StringFixed(2)
		}
	case rounds.Carried:
		// Carried values arrive negated; show the amount in brackets.
		if c.Value != nil {
			return "(" + c.Value.Neg().StringFixed(2) + ")"
		}
	}
	return ""
}

func styledCell(c api.Cell) string {
	text := cellText(c)
	switch c.Kind {
	case rounds.Carried:
		return carryStyle.Render(text)
	case rounds.Hidden:
		return hiddenStyle.Render(text)
	}
	return text
}

func sumText(st *api.State, round int) string {
	for _, s := range st.Sums {
		if s.Round != round {
			continue
		}
		if s.Hidden {
			return hiddenStyle.Render(hiddenMark)
		}
		if s.Sum != nil {
			return s.Sum.StringFixed(2)
		}
	}
	return ""
}
