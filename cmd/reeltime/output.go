package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// column describes one table column. Numeric columns are right aligned.
type column struct {
	header  string
	numeric bool
}

func renderTable(title string, columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle(title)
	}

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.header
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 18

// statusLine renders "  label: [KIND] message", coloured when colorize is set.
func statusLine(label string, kind statusKind, message string, colorize bool) string {
	var tag, color string
	switch kind {
	case statusOK:
		tag, color = "OK", ansiGreen
	case statusWarn:
		tag, color = "WARN", ansiYellow
	case statusError:
		tag, color = "ERROR", ansiRed
	default:
		tag, color = "INFO", ansiBlue
	}
	line := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, label+":", tag)
	if message != "" {
		line += " " + message
	}
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func sectionHeader(title string, colorize bool) string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if colorize {
		return ansiBlue + line + ansiReset
	}
	return line
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "s"
}

func gain(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
