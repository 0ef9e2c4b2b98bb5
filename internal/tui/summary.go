package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"cip/internal/processor"
)

type SummaryRow struct {
	Label string
	Value string
}

// SummaryRows lists the figures printed at the end of a run.
func SummaryRows(s processor.Summary) []SummaryRow {
	saved := s.BytesBefore - s.BytesAfter
	return []SummaryRow{
		{Label: "Directories scanned", Value: fmt.Sprintf("%d", s.Directories)},
		{Label: "Files processed", Value: fmt.Sprintf("%d", s.Processed)},
		{Label: "Files skipped", Value: fmt.Sprintf("%d", s.Skipped)},
		{Label: "Size before", Value: HumanBytes(s.BytesBefore)},
		{Label: "Size after", Value: HumanBytes(s.BytesAfter)},
		{Label: "Space saved", Value: HumanBytes(saved)},
		{Label: "Elapsed", Value: processor.Clock(s.Elapsed)},
	}
}

// RenderSummary lays the rows out as two aligned columns between horizontal rules.
func RenderSummary(rows []SummaryRow) string {
	labels := make([]string, len(rows))
	values := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = labelStyle.Render(row.Label)
		values[i] = valueStyle.Render(row.Value)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		labelColumn.Render(lipgloss.JoinVertical(lipgloss.Left, labels...)),
		valueColumn.Render(lipgloss.JoinVertical(lipgloss.Left, values...)),
	)
	return summaryFrame.Render(body)
}

const (
	kb = 1 << 10
	mb = 1 << 20
	gb = 1 << 30
)

// HumanBytes renders a byte count with a binary unit. Negative counts keep their sign.
func HumanBytes(size int64) string {
	abs := size
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= gb:
		return fmt.Sprintf("%.2f GB", float64(size)/gb)
	case abs >= mb:
		return fmt.Sprintf("%.2f MB", float64(size)/mb)
	case abs >= kb:
		return fmt.Sprintf("%.2f KB", float64(size)/kb)
	default:
		return fmt.Sprintf("%d B", size)
	}
}

var (
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	labelColumn  = lipgloss.NewStyle().PaddingRight(1)
	valueColumn  = lipgloss.NewStyle().PaddingLeft(1).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(ColorDim)
	summaryFrame = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false).BorderForeground(ColorDim)
)
