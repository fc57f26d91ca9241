/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/google/gridcore/core/aggregation"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	groupStyle  = lipgloss.NewStyle().Bold(true)
	footerStyle = lipgloss.NewStyle().Italic(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const columnGap = "  "

// RenderText renders a view model as an aligned text table: a tree column,
// the visible columns and the row geometry.
func RenderText(vm GridViewModel) string {
	header := []string{"", "top", "height"}
	for _, h := range vm.Headers {
		label := h.DisplayName
		if h.AggregationLabel != "" {
			label += " (" + h.AggregationLabel + ")"
		}
		header = append(header, label)
	}

	var lines [][]string
	var kinds []string
	add := func(row RowView, withTop bool) {
		top := ""
		if withTop {
			top = formatFloat(row.Top)
		}
		line := []string{treeLabel(row), top, formatFloat(row.Height)}
		for _, cell := range row.Cells {
			line = append(line, cell.Text)
		}
		lines = append(lines, line)
		kinds = append(kinds, row.Kind)
	}
	for _, row := range vm.PinnedTop {
		add(row, false)
	}
	for _, row := range vm.Rows {
		add(row, true)
	}
	for _, row := range vm.PinnedBot {
		add(row, false)
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, line := range lines {
		for i, text := range line {
			widths[i] = max(widths[i], lipgloss.Width(text))
		}
	}

	var b strings.Builder
	if vm.Title != "" {
		b.WriteString(headerStyle.Render(vm.Title))
		b.WriteString("\n")
	}
	b.WriteString(renderLine(header, widths, headerStyle))
	b.WriteString("\n")
	for i, line := range lines {
		style := lipgloss.NewStyle()
		switch kinds[i] {
		case "group":
			style = groupStyle
		case "footer", "pinnedRow":
			style = footerStyle
		}
		b.WriteString(renderLine(line, widths, style))
		b.WriteString("\n")
	}
	if vm.NoRows {
		b.WriteString(dimStyle.Render(vm.NoRowsLabel))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("rows: " + strconv.Itoa(vm.DisplayedRows) +
		" of " + strconv.Itoa(vm.TotalRows) + ", height: " + formatFloat(vm.TotalHeight)))
	b.WriteString("\n")
	return b.String()
}

func renderLine(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, text := range cells {
		parts[i] = style.Width(widths[i]).Render(text)
	}
	return strings.TrimRight(strings.Join(parts, columnGap), " ")
}

func treeLabel(row RowView) string {
	indent := strings.Repeat("  ", row.Depth)
	switch row.Kind {
	case "group":
		marker := "▸ "
		if row.Expanded {
			marker = "▾ "
		}
		return indent + marker + row.Label
	case "footer":
		return indent + "Σ"
	case "pinnedRow":
		if row.ID == string(aggregation.RootFooterRowID) {
			return "Σ"
		}
		return "· " + row.ID
	default:
		return indent + "· " + row.ID
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
