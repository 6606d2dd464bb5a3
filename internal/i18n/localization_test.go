package i18n

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"amira/domain/therapy"
)

func TestText_ParamSubstitution(t *testing.T) {
	p := NewProvider()
	got := p.Text(therapy.LanguageEnglish, "ask_nationality", map[string]string{"name": "Alice"})
	assert.Contains(t, got, "Alice")
	assert.NotContains(t, got, "{name}")
}

func TestText_FallsBackToDefaultLanguage(t *testing.T) {
	p := NewProvider()
	// select_language has no Arabic entry; the English text is bilingual.
	got := p.Text(therapy.LanguageArabic, "select_language", nil)
	assert.Equal(t, p.Text(therapy.LanguageEnglish, "select_language", nil), got)
}

func TestText_UnknownLanguageUsesDefault(t *testing.T) {
	p := NewProvider()
	got := p.Text(therapy.Language("fr"), "help_text", nil)
	assert.Equal(t, p.Text(therapy.DefaultLanguage, "help_text", nil), got)
}

func TestText_MissingKeyResolvesToKey(t *testing.T) {
	p := NewProvider()
	assert.Equal(t, "no_such_key", p.Text(therapy.LanguageEnglish, "no_such_key", nil))
}

func TestText_ArabicEntries(t *testing.T) {
	p := NewProvider()
	en := p.Text(therapy.LanguageEnglish, "welcome", nil)
	ar := p.Text(therapy.LanguageArabic, "welcome", nil)
	assert.NotEqual(t, en, ar)
	assert.True(t, strings.Contains(ar, "أميرة"))
}
