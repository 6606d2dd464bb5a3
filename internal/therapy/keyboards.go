package therapy

import (
	"context"

	"amira/domain/therapy"
	"amira/ports"
)

func (m *Machine) sendLanguageKeyboard(ctx context.Context, externalID int64) {
	m.send(ctx, externalID, therapy.DefaultLanguage, "select_language", nil, [][]ports.Choice{{
		{Label: "English", Payload: string(therapy.LanguageEnglish)},
		{Label: "العربية", Payload: string(therapy.LanguageArabic)},
	}})
}

func (m *Machine) sendEntryMenu(ctx context.Context, externalID int64, u *userState) {
	lang := u.language
	m.send(ctx, externalID, lang, "welcome_back", map[string]string{"name": u.patient.Name}, [][]ports.Choice{
		{{Label: m.localizer.Text(lang, "view_progress", nil), Payload: choiceViewProgress}},
		{{Label: m.localizer.Text(lang, "get_report", nil), Payload: choiceGetReport}},
		{{Label: m.localizer.Text(lang, "continue_conversation", nil), Payload: choiceContinue}},
	})
}

func (m *Machine) sendConditionKeyboard(ctx context.Context, externalID int64, u *userState) {
	lang := u.language
	m.send(ctx, externalID, lang, "ask_condition", nil, [][]ports.Choice{
		{
			{Label: m.localizer.Text(lang, "depression", nil), Payload: string(therapy.ConditionDepression)},
			{Label: m.localizer.Text(lang, "bipolar", nil), Payload: string(therapy.ConditionBipolar)},
		},
		{
			{Label: m.localizer.Text(lang, "ocd", nil), Payload: string(therapy.ConditionOCD)},
			{Label: m.localizer.Text(lang, "unknown", nil), Payload: string(therapy.ConditionUnknown)},
		},
	})
}

func (m *Machine) sendLettingGoOffer(ctx context.Context, externalID int64, u *userState) {
	lang := u.language
	m.send(ctx, externalID, lang, "letting_go_prompt", nil, [][]ports.Choice{{
		{Label: m.localizer.Text(lang, "letting_go_yes", nil), Payload: choiceLettingGoYes},
		{Label: m.localizer.Text(lang, "letting_go_no", nil), Payload: choiceLettingGoNo},
	}})
}
