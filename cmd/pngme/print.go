package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ysh86/pngme"
	"github.com/ysh86/pngme/png"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("205"))

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	customStyle = cellStyle.
			Foreground(lipgloss.Color("86"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// printTable renders chunks as a table. Ancillary chunks, where messages
// live, are highlighted.
func printTable(w io.Writer, chunks []*png.Chunk) {
	rows := make([][]string, 0, len(chunks))
	for i, c := range chunks {
		rows = append(rows, []string{
			strconv.Itoa(i),
			c.Type().String(),
			strconv.FormatUint(uint64(c.Length()), 10),
			fmt.Sprintf("%08x", c.CRC()),
			pngme.Flags(c.Type()),
			pngme.Summary(c),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("#", "TYPE", "LENGTH", "CRC", "FLAGS", "DATA").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(chunks) && !chunks[row].Type().IsCritical() {
				return customStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d chunks", len(chunks))))
}
