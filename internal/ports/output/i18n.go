package output

// Catalog renders user-facing reply texts.
type Catalog interface {
	// T renders the message identified by key for locale, filling template
	// placeholders from data (may be nil). Unknown keys render as the key.
	T(locale, key string, data map[string]any) string
}
