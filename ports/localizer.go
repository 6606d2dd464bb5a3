package ports

import "amira/domain/therapy"

// Localizer resolves user-facing text. Missing keys fall back to the default
// language; a key missing everywhere resolves to the key itself.
type Localizer interface {
	Text(lang therapy.Language, key string, params map[string]string) string
}
