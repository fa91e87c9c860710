package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// tone classifies a result line for its badge and colour.
type tone int

const (
	toneNeutral tone = iota
	toneGood
	toneWarn
	toneBad
)

func (t tone) badge() string {
	switch t {
	case toneGood:
		return "✓"
	case toneWarn:
		return "!"
	case toneBad:
		return "✗"
	default:
		return "·"
	}
}

func (t tone) colors() text.Colors {
	switch t {
	case toneGood:
		return text.Colors{text.FgGreen}
	case toneWarn:
		return text.Colors{text.FgYellow}
	case toneBad:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgBlue}
	}
}

const checkLabelWidth = 18

// screen writes human output for one command. Colour is applied only when
// the destination is a terminal.
type screen struct {
	out   io.Writer
	color bool
}

func newScreen(out io.Writer) screen {
	return screen{out: out, color: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (s screen) paint(t tone, v string) string {
	if !s.color {
		return v
	}
	return t.colors().Sprint(v)
}

// heading prints title with a rule matching its display width, so Korean
// titles are underlined correctly.
func (s screen) heading(title string) {
	title = strings.TrimSpace(title)
	width := text.StringWidthWithoutEscSequences(title)
	fmt.Fprintln(s.out, s.paint(toneNeutral, title))
	fmt.Fprintln(s.out, s.paint(toneNeutral, strings.Repeat("─", max(width, 1))))
}

// check prints one aligned "label  badge message" result line.
func (s screen) check(label string, t tone, message string) {
	pad := checkLabelWidth - text.StringWidthWithoutEscSequences(label)
	line := "  " + label + strings.Repeat(" ", max(pad, 1)) + t.badge()
	if message != "" {
		line += " " + message
	}
	fmt.Fprintln(s.out, s.paint(t, line))
}

// column describes one table column. Numeric columns align right.
type column struct {
	title   string
	numeric bool
}

func col(title string) column { return column{title: title} }

func num(title string) column { return column{title: title, numeric: true} }

func (s screen) table(cols []column, rows [][]string) {
	if len(cols) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
		if c.numeric {
			configs[i].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i := range cols {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	tw.SetColumnConfigs(configs)
	fmt.Fprintln(s.out, tw.Render())
}

// details prints label/value pairs without a header row, skipping empty
// values. Long values wrap.
func (s screen) details(pairs [][2]string) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = false
	for _, pair := range pairs {
		if pair[1] == "" {
			continue
		}
		tw.AppendRow(table.Row{pair[0], pair[1]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 72}})
	fmt.Fprintln(s.out, tw.Render())
}
