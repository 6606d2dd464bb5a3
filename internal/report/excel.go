package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"amira/domain/therapy"
)

// ExportXLSX renders a report's metrics as a spreadsheet: a summary sheet
// and, when present, an emotion distribution sheet.
func ExportXLSX(report *therapy.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]any{
		{"Report ID", report.ID.String()},
		{"Patient ID", report.PatientID.String()},
		{"Type", string(report.Type)},
		{"Created", report.CreationDate.String()},
		{"Sessions", report.Metrics.SessionCount},
		{"Interactions", report.Metrics.InteractionCount},
		{"Progress %", report.Metrics.ProgressPercentage},
		{"Engagement trend", string(report.Metrics.EngagementTrend)},
	}
	if report.Metrics.IntensityTrend != nil {
		rows = append(rows,
			[]any{"Intensity slope", report.Metrics.IntensityTrend.Slope},
			[]any{"Intensity trend", string(report.Metrics.IntensityTrend.Interpretation)},
		)
	}
	for t, pct := range report.Metrics.TechniqueEffectiveness {
		if pct != nil {
			rows = append(rows, []any{fmt.Sprintf("Effectiveness: %s", t), *pct})
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, fmt.Errorf("write summary row: %w", err)
		}
	}

	if len(report.Metrics.EmotionDistribution) > 0 {
		const emotions = "Emotions"
		if _, err := f.NewSheet(emotions); err != nil {
			return nil, fmt.Errorf("add emotions sheet: %w", err)
		}
		header := []any{"Emotion", "Count", "Percentage"}
		if err := f.SetSheetRow(emotions, "A1", &header); err != nil {
			return nil, err
		}
		for i, ec := range report.Metrics.EmotionDistribution {
			row := []any{string(ec.Emotion), ec.Count, ec.Percentage}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(emotions, cell, &row); err != nil {
				return nil, fmt.Errorf("write emotion row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
