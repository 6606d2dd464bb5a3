package therapy

import (
	"context"
	"fmt"
	"strings"

	"amira/domain/therapy"
)

// sendProgressSnapshot renders an in-chat view of the current session:
// progress bar, technique count, emotion tallies.
func (m *Machine) sendProgressSnapshot(ctx context.Context, externalID int64, u *userState) {
	interactions := u.session.Interactions()
	progress := m.engine.ProgressPercentage(interactions)
	trend := m.engine.EmotionalTrend(interactions)

	lettingGoCount := 0
	for _, in := range interactions {
		if in.Technique == therapy.TechniqueLettingGo {
			lettingGoCount++
		}
	}

	var b strings.Builder
	b.WriteString(m.localizer.Text(u.language, "progress_report_title", nil))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %d%%\n", renderProgressBar(progress), progress)
	b.WriteString(m.localizer.Text(u.language, "technique_usage", map[string]string{
		"count": fmt.Sprintf("%d", lettingGoCount),
	}))
	if len(trend) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.localizer.Text(u.language, "emotional_trends", nil))
		for _, ec := range trend {
			fmt.Fprintf(&b, "\n• %s: %d (%.0f%%)", ec.Emotion, ec.Count, ec.Percentage)
		}
	}
	m.sendRaw(ctx, externalID, b.String(), nil)
}

// sendProgressReport compiles a progress report and summarizes it in chat.
// Compilation failures keep the conversation going with a stock message.
func (m *Machine) sendProgressReport(ctx context.Context, externalID int64, u *userState) {
	m.send(ctx, externalID, u.language, "generating_report", nil, nil)

	report, err := m.reports.GenerateProgressReport(ctx, u.patient.ID)
	if err != nil {
		m.logger.Error("progress report for %s failed: %v", u.patient.ID, err)
		m.send(ctx, externalID, u.language, "report_error", nil, nil)
		return
	}

	var b strings.Builder
	b.WriteString(m.localizer.Text(u.language, "therapeutic_report_title", nil))
	b.WriteString("\n\n")
	if report.Progress != nil {
		b.WriteString(m.localizer.Text(u.language, "overall_assessment", nil))
		b.WriteString(" ")
		b.WriteString(report.Progress.OverallAssessment)
		if len(report.Progress.ProgressIndicators) > 0 {
			b.WriteString("\n\n")
			b.WriteString(m.localizer.Text(u.language, "progress_indicators", nil))
			for _, p := range report.Progress.ProgressIndicators {
				b.WriteString("\n• " + p)
			}
		}
		if len(report.Progress.Recommendations) > 0 {
			b.WriteString("\n\n")
			b.WriteString(m.localizer.Text(u.language, "recommendations", nil))
			for _, r := range report.Progress.Recommendations {
				b.WriteString("\n• " + r)
			}
		}
	}
	fmt.Fprintf(&b, "\n\n%s %d%%", renderProgressBar(report.Metrics.ProgressPercentage), report.Metrics.ProgressPercentage)
	m.sendRaw(ctx, externalID, b.String(), nil)
}

// buildSummary composes the free-text session synopsis frozen at close.
func (m *Machine) buildSummary(session *therapy.Session) string {
	interactions := session.Interactions()
	if len(interactions) == 0 {
		return m.localizer.Text(therapy.DefaultLanguage, "no_summary_available", nil)
	}

	trend := m.engine.EmotionalTrend(interactions)
	dominant := therapy.EmotionUnknown
	best := 0
	for _, ec := range trend {
		if ec.Count > best {
			dominant = ec.Emotion
			best = ec.Count
		}
	}

	return fmt.Sprintf("Session with %d interactions. Dominant emotion: %s. Progress: %d%%. Engagement: %s.",
		len(interactions), dominant,
		m.engine.ProgressPercentage(interactions),
		m.engine.EngagementTrend(interactions))
}

func renderProgressBar(pct int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct / 10
	return strings.Repeat("▓", filled) + strings.Repeat("░", 10-filled)
}
