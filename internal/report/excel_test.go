package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"amira/domain/core"
	"amira/domain/therapy"
)

func TestExportXLSX(t *testing.T) {
	rep := therapy.NewReport(core.PatientID(core.NewID()), therapy.ReportProgress)
	rep.Metrics = therapy.ReportMetrics{
		InteractionCount:   12,
		SessionCount:       3,
		ProgressPercentage: 40,
		EngagementTrend:    therapy.TrendIncreasing,
		EmotionDistribution: []therapy.EmotionCount{
			{Emotion: "sadness", Count: 7, Percentage: 58.3},
			{Emotion: "calm", Count: 5, Percentage: 41.7},
		},
	}

	data, err := ExportXLSX(rep)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Summary")
	assert.Contains(t, f.GetSheetList(), "Emotions")

	got, err := f.GetCellValue("Emotions", "A2")
	require.NoError(t, err)
	assert.Equal(t, "sadness", got)
}

func TestExportXLSX_NoEmotionSheetWhenEmpty(t *testing.T) {
	rep := therapy.NewReport(core.PatientID(core.NewID()), therapy.ReportAssessment)

	data, err := ExportXLSX(rep)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.NotContains(t, f.GetSheetList(), "Emotions")
}
