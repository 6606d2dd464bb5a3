package therapy

import (
	"context"
	"strings"
	"sync"

	"amira/domain/core"
	"amira/domain/therapy"
	"amira/internal"
	"amira/internal/analytics"
	"amira/internal/config"
	"amira/ports"
)

// State identifies the conversation position of one external user.
type State string

const (
	StateLanguageSelect      State = "language_select"
	StateRegisterName        State = "register_name"
	StateRegisterNationality State = "register_nationality"
	StateRegisterAge         State = "register_age"
	StateRegisterEducation   State = "register_education"
	StateSelectCondition     State = "select_condition"
	StateConversation        State = "conversation"
	StateLettingGoPrompt     State = "letting_go_prompt"
	StateEnd                 State = "end"
)

// Event is one inbound gateway event: free text or a tagged choice, never
// both.
type Event struct {
	Text   string
	Choice string
}

// IsChoice reports whether the event carries a choice payload.
func (e Event) IsChoice() bool { return e.Choice != "" }

// choice payloads used by the inline keyboards
const (
	choiceViewProgress = "view_progress"
	choiceGetReport    = "get_report"
	choiceContinue     = "continue_conversation"
	choiceLettingGoYes = "letting_go_yes"
	choiceLettingGoNo  = "letting_go_no"
	choiceProgress     = "progress"
)

// commands accepted as free text from any state
const (
	commandStart = "start"
	commandHelp  = "help"
	commandEnd   = "end"
)

// ReportGenerator is the slice of the report compiler the conversation
// needs for in-chat report requests.
type ReportGenerator interface {
	GenerateProgressReport(ctx context.Context, patientID core.PatientID) (*therapy.Report, error)
}

// userState is the in-memory conversation position for one external id.
// Patient and session records are durable; this is not, and a restart drops
// back to the known-patient entry path.
type userState struct {
	state         State
	language      therapy.Language
	patient       *therapy.Patient
	session       *therapy.Session
	lettingGoStep int
}

// Machine is the per-user conversation automaton. All collaborators are
// injected; nothing here touches package-level state.
type Machine struct {
	patients   ports.PatientRepository
	controller *SessionController
	lang       ports.LanguageService
	localizer  ports.Localizer
	messenger  ports.Messenger
	reports    ReportGenerator
	engine     *analytics.Engine
	policy     *config.TherapyConfig
	clock      core.Clock
	logger     *internal.Logger

	mu    sync.Mutex
	users map[int64]*userState
}

// NewMachine wires the conversation state machine.
func NewMachine(
	patients ports.PatientRepository,
	controller *SessionController,
	lang ports.LanguageService,
	localizer ports.Localizer,
	messenger ports.Messenger,
	reports ReportGenerator,
	engine *analytics.Engine,
	policy *config.TherapyConfig,
	clock core.Clock,
	logger *internal.Logger,
) *Machine {
	return &Machine{
		patients:   patients,
		controller: controller,
		lang:       lang,
		localizer:  localizer,
		messenger:  messenger,
		reports:    reports,
		engine:     engine,
		policy:     policy,
		clock:      clock,
		logger:     logger.With("[machine]"),
		users:      make(map[int64]*userState),
	}
}

// HandleEvent processes one inbound event for one external user. The
// dispatcher serializes calls per external id; this method assumes that
// ordering and never blocks on another user's work.
func (m *Machine) HandleEvent(ctx context.Context, externalID int64, ev Event) {
	u, err := m.userFor(ctx, externalID)
	if err != nil {
		m.logger.Error("resolving user %d failed: %v", externalID, err)
		m.send(ctx, externalID, therapy.DefaultLanguage, "error_processing", nil, nil)
		return
	}

	// The end command forces END from any state, flushing the open session.
	if isCommand(ev, commandEnd) {
		m.handleEnd(ctx, externalID, u)
		return
	}
	if isCommand(ev, commandHelp) {
		m.send(ctx, externalID, u.language, "help_text", nil, nil)
		return
	}
	// The entry command restarts the automaton at the state matching
	// patient existence.
	if isCommand(ev, commandStart) {
		if u.patient != nil {
			u.state = StateConversation
			m.sendEntryMenu(ctx, externalID, u)
		} else {
			u.state = StateLanguageSelect
			m.sendLanguageKeyboard(ctx, externalID)
		}
		return
	}

	switch u.state {
	case StateLanguageSelect:
		m.handleLanguageSelect(ctx, externalID, u, ev)
	case StateRegisterName:
		m.handleRegisterName(ctx, externalID, u, ev)
	case StateRegisterNationality:
		m.handleRegisterNationality(ctx, externalID, u, ev)
	case StateRegisterAge:
		m.handleRegisterAge(ctx, externalID, u, ev)
	case StateRegisterEducation:
		m.handleRegisterEducation(ctx, externalID, u, ev)
	case StateSelectCondition:
		m.handleSelectCondition(ctx, externalID, u, ev)
	case StateConversation:
		m.handleConversation(ctx, externalID, u, ev)
	case StateLettingGoPrompt:
		m.handleLettingGoPrompt(ctx, externalID, u, ev)
	default:
		m.logger.Warn("user %d in unexpected state %s", externalID, u.state)
		m.send(ctx, externalID, u.language, "invalid_input", nil, nil)
	}
}

// userFor resolves the in-memory state for an external id, creating it on
// first contact. A known patient enters at CONVERSATION with their open
// session resumed; an unknown one starts registration.
func (m *Machine) userFor(ctx context.Context, externalID int64) (*userState, error) {
	m.mu.Lock()
	if u, ok := m.users[externalID]; ok {
		m.mu.Unlock()
		return u, nil
	}
	m.mu.Unlock()

	patient, err := m.patients.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	u := &userState{state: StateLanguageSelect, language: therapy.DefaultLanguage}
	if patient != nil {
		session, err := m.controller.Resume(ctx, patient.ID)
		if err != nil {
			return nil, err
		}
		u.state = StateConversation
		u.language = patient.Language
		u.patient = patient
		u.session = session
	}

	m.mu.Lock()
	m.users[externalID] = u
	m.mu.Unlock()
	return u, nil
}

// forget drops the in-memory state so the next contact re-enters via the
// patient-existence check.
func (m *Machine) forget(externalID int64) {
	m.mu.Lock()
	delete(m.users, externalID)
	m.mu.Unlock()
}

func (m *Machine) send(ctx context.Context, externalID int64, lang therapy.Language, key string, params map[string]string, choices [][]ports.Choice) {
	text := m.localizer.Text(lang, key, params)
	if err := m.messenger.Send(ctx, externalID, text, choices); err != nil {
		m.logger.Error("send to %d failed: %v", externalID, err)
	}
}

func (m *Machine) sendRaw(ctx context.Context, externalID int64, text string, choices [][]ports.Choice) {
	if err := m.messenger.Send(ctx, externalID, text, choices); err != nil {
		m.logger.Error("send to %d failed: %v", externalID, err)
	}
}

func isCommand(ev Event, cmd string) bool {
	if ev.IsChoice() {
		return ev.Choice == cmd
	}
	text := strings.ToLower(strings.TrimSpace(ev.Text))
	return text == cmd || text == "/"+cmd
}
