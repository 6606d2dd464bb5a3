package therapy

import (
	"context"
	"strconv"
	"strings"

	"amira/domain/therapy"
	"amira/ports"
)

func (m *Machine) handleLanguageSelect(ctx context.Context, externalID int64, u *userState, ev Event) {
	if ev.IsChoice() {
		if lang, ok := therapy.ParseLanguage(ev.Choice); ok {
			u.language = lang
			u.state = StateRegisterName
			m.send(ctx, externalID, lang, "welcome", nil, nil)
			return
		}
	}
	// Choice-only state: anything else re-prompts.
	m.sendLanguageKeyboard(ctx, externalID)
}

func (m *Machine) handleRegisterName(ctx context.Context, externalID int64, u *userState, ev Event) {
	name := strings.TrimSpace(ev.Text)
	if ev.IsChoice() || name == "" {
		m.send(ctx, externalID, u.language, "welcome", nil, nil)
		return
	}

	patient := therapy.NewPatient(externalID, name, u.language)
	if err := m.patients.Save(ctx, patient); err != nil {
		m.logger.Error("saving patient for %d failed: %v", externalID, err)
		m.send(ctx, externalID, u.language, "error_processing", nil, nil)
		return
	}
	u.patient = patient
	u.state = StateRegisterNationality
	m.send(ctx, externalID, u.language, "ask_nationality", map[string]string{"name": name}, nil)
}

func (m *Machine) handleRegisterNationality(ctx context.Context, externalID int64, u *userState, ev Event) {
	text := strings.TrimSpace(ev.Text)
	if ev.IsChoice() || text == "" {
		m.send(ctx, externalID, u.language, "ask_nationality", map[string]string{"name": u.patient.Name}, nil)
		return
	}
	u.patient.Nationality = text
	m.savePatient(ctx, u)
	u.state = StateRegisterAge
	m.send(ctx, externalID, u.language, "ask_age", nil, nil)
}

func (m *Machine) handleRegisterAge(ctx context.Context, externalID int64, u *userState, ev Event) {
	text := strings.TrimSpace(ev.Text)
	if ev.IsChoice() || text == "" {
		m.send(ctx, externalID, u.language, "ask_age", nil, nil)
		return
	}
	// Non-integer ages are stored raw rather than failing the transition.
	if _, err := strconv.Atoi(text); err != nil {
		m.logger.Info("patient %s gave non-integer age %q", u.patient.ID, text)
	}
	u.patient.Age = text
	m.savePatient(ctx, u)
	u.state = StateRegisterEducation
	m.send(ctx, externalID, u.language, "ask_education", nil, nil)
}

func (m *Machine) handleRegisterEducation(ctx context.Context, externalID int64, u *userState, ev Event) {
	text := strings.TrimSpace(ev.Text)
	if ev.IsChoice() || text == "" {
		m.send(ctx, externalID, u.language, "ask_education", nil, nil)
		return
	}
	u.patient.Education = text
	m.savePatient(ctx, u)
	u.state = StateSelectCondition
	m.sendConditionKeyboard(ctx, externalID, u)
}

func (m *Machine) handleSelectCondition(ctx context.Context, externalID int64, u *userState, ev Event) {
	input := ev.Choice
	if !ev.IsChoice() {
		input = strings.ToLower(strings.TrimSpace(ev.Text))
	}
	condition, ok := therapy.ParseCondition(input)
	if !ok {
		// Choice-only state: unrecognized input re-prompts, never advances.
		m.send(ctx, externalID, u.language, "invalid_input", nil, nil)
		m.sendConditionKeyboard(ctx, externalID, u)
		return
	}

	u.patient.Condition = condition
	m.savePatient(ctx, u)

	session, err := m.controller.Resume(ctx, u.patient.ID)
	if err != nil {
		m.logger.Error("opening session for %s failed: %v", u.patient.ID, err)
		m.send(ctx, externalID, u.language, "error_processing", nil, nil)
		return
	}
	u.session = session
	u.state = StateConversation
	m.send(ctx, externalID, u.language, "registration_complete", map[string]string{
		"condition": m.localizer.Text(u.language, string(condition), nil),
	}, nil)
}

func (m *Machine) handleConversation(ctx context.Context, externalID int64, u *userState, ev Event) {
	if ev.IsChoice() {
		// A language choice mid-conversation updates the record in place;
		// the session stays open and the state does not change.
		if lang, ok := therapy.ParseLanguage(ev.Choice); ok {
			u.language = lang
			u.patient.Language = lang
			m.savePatient(ctx, u)
			m.send(ctx, externalID, lang, "how_feeling_today", map[string]string{"name": u.patient.Name}, nil)
			return
		}
		switch ev.Choice {
		case choiceViewProgress, choiceProgress:
			m.sendProgressSnapshot(ctx, externalID, u)
		case choiceGetReport:
			m.sendProgressReport(ctx, externalID, u)
		case choiceContinue:
			m.send(ctx, externalID, u.language, "how_feeling_today", map[string]string{"name": u.patient.Name}, nil)
		default:
			m.send(ctx, externalID, u.language, "invalid_input", nil, nil)
		}
		return
	}

	text := strings.TrimSpace(ev.Text)
	if text == "" {
		m.send(ctx, externalID, u.language, "invalid_input", nil, nil)
		return
	}
	if strings.EqualFold(text, choiceProgress) {
		m.sendProgressSnapshot(ctx, externalID, u)
		return
	}
	m.therapeuticTurn(ctx, externalID, u, text)
}

// therapeuticTurn runs one full exchange: emotion analysis, reply
// generation, ledger append, classification cadence, letting-go offer.
// Every external call degrades to a localized stock path.
func (m *Machine) therapeuticTurn(ctx context.Context, externalID int64, u *userState, text string) {
	analysis, err := m.lang.AnalyzeEmotion(ctx, text)
	if err != nil {
		m.logger.Warn("emotion analysis for %s failed: %v", u.patient.ID, err)
		analysis = therapy.FallbackEmotionAnalysis("analysis unavailable")
	}

	technique := therapy.TechniqueStandard
	var reply string
	if u.lettingGoStep > 0 {
		technique = therapy.TechniqueLettingGo
		reply = m.nextLettingGoStep(u)
	}
	if reply == "" {
		reply, err = m.lang.GenerateReply(ctx, ports.ReplyRequest{
			Message:   text,
			Emotion:   analysis,
			Condition: u.patient.Condition,
			Language:  u.language,
			Technique: technique,
		})
		if err != nil {
			m.logger.Warn("reply generation for %s failed: %v", u.patient.ID, err)
			reply = m.localizer.Text(u.language, "error_processing", nil)
		}
	}

	if err := m.controller.Append(ctx, u.session, therapy.Interaction{
		UserMessage: text,
		BotResponse: reply,
		Emotion:     analysis,
		Technique:   technique,
	}); err != nil {
		m.logger.Error("append for session %s failed: %v", u.session.ID(), err)
		m.send(ctx, externalID, u.language, "error_processing", nil, nil)
		return
	}

	m.sendRaw(ctx, externalID, reply, nil)

	if m.controller.ClassificationDue(u.session) {
		classification, err := m.lang.ClassifyCondition(ctx, m.controller.ClassificationWindow(u.session))
		if err != nil {
			m.logger.Warn("classification for %s failed: %v", u.patient.ID, err)
			classification = therapy.ClassificationUnclear
		}
		if err := m.controller.AddClassification(ctx, u.session, classification); err != nil {
			m.logger.Error("recording classification for %s failed: %v", u.session.ID(), err)
		}
	}

	if technique == therapy.TechniqueStandard &&
		analysis.Primary.IsNegative() &&
		u.session.Len()%m.policy.LettingGoOfferEvery == 0 {
		u.state = StateLettingGoPrompt
		m.sendLettingGoOffer(ctx, externalID, u)
	}
}

func (m *Machine) handleLettingGoPrompt(ctx context.Context, externalID int64, u *userState, ev Event) {
	switch {
	case ev.IsChoice() && ev.Choice == choiceLettingGoYes:
		u.state = StateConversation
		u.lettingGoStep = 1
		m.send(ctx, externalID, u.language, "letting_go_intro", nil, nil)
		m.send(ctx, externalID, u.language, "letting_go_step1", nil, nil)
	case ev.IsChoice() && ev.Choice == choiceLettingGoNo:
		u.state = StateConversation
		m.send(ctx, externalID, u.language, "how_feeling_today", map[string]string{"name": u.patient.Name}, nil)
	default:
		// Free text declines the offer and is handled as conversation.
		u.state = StateConversation
		m.handleConversation(ctx, externalID, u, ev)
	}
}

// handleEnd closes the open session if any and ends the invocation. The
// automaton restarts from patient existence on the next entry command.
func (m *Machine) handleEnd(ctx context.Context, externalID int64, u *userState) {
	if u.session != nil && !u.session.IsClosed() {
		summary := m.buildSummary(u.session)
		m.controller.Close(ctx, u.session, summary)
	}
	u.state = StateEnd
	m.send(ctx, externalID, u.language, "end_conversation", nil, nil)
	m.forget(externalID)
}

func (m *Machine) savePatient(ctx context.Context, u *userState) {
	if err := m.patients.Save(ctx, u.patient); err != nil {
		m.logger.Error("saving patient %s failed: %v", u.patient.ID, err)
	}
}
