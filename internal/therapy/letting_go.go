package therapy

// lettingGoStepKeys index the guided release exercise. Step 1 is sent when
// the patient accepts the offer; each following patient message advances one
// step until the sequence completes.
var lettingGoStepKeys = []string{
	"letting_go_step1",
	"letting_go_step2",
	"letting_go_step3",
	"letting_go_step4",
}

// nextLettingGoStep returns the localized text of the next exercise step and
// advances the cursor, resetting it after the last step. An out-of-range
// cursor resets and returns "", handing the reply back to the language
// service.
func (m *Machine) nextLettingGoStep(u *userState) string {
	if u.lettingGoStep <= 0 || u.lettingGoStep >= len(lettingGoStepKeys) {
		u.lettingGoStep = 0
		return ""
	}
	key := lettingGoStepKeys[u.lettingGoStep]
	u.lettingGoStep++
	if u.lettingGoStep >= len(lettingGoStepKeys) {
		u.lettingGoStep = 0
	}
	return m.localizer.Text(u.language, key, nil)
}
