package entities

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"zungenrede/internal/domain"
)

// LanguagePair scopes a translation: Source is the language of the key,
// Target the language of the value. Both hold canonical base-language codes.
type LanguagePair struct {
	Source string
	Target string
}

// ParseLanguagePair canonicalizes two language codes ("EN", "deu" -> "en", "de").
func ParseLanguagePair(source, target string) (LanguagePair, error) {
	src, err := parseBase(source)
	if err != nil {
		return LanguagePair{}, err
	}
	dst, err := parseBase(target)
	if err != nil {
		return LanguagePair{}, err
	}
	if src == dst {
		return LanguagePair{}, fmt.Errorf("%w: %s", domain.ErrSameLanguage, src)
	}
	return LanguagePair{Source: src, Target: dst}, nil
}

// specialBases are ISO 639 codes that name no language: undetermined,
// multiple, uncoded and no linguistic content.
var specialBases = map[string]struct{}{
	"und": {},
	"mul": {},
	"mis": {},
	"zxx": {},
}

func parseBase(code string) (string, error) {
	code = strings.TrimSpace(code)
	base, err := language.ParseBase(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownLang, code)
	}
	if _, special := specialBases[base.String()]; special || base.IsPrivateUse() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownLang, code)
	}
	return base.String(), nil
}

// Valid reports whether p is already in canonical form.
func (p LanguagePair) Valid() bool {
	c, err := ParseLanguagePair(p.Source, p.Target)
	return err == nil && c == p
}

func (p LanguagePair) String() string {
	return p.Source + ">" + p.Target
}

// TranslationEntry is one remembered translation.
type TranslationEntry struct {
	Key   string
	Value string
	Pair  LanguagePair
}

// NewTranslationEntry builds a normalized entry or returns domain.ErrInvalidEntry.
func NewTranslationEntry(key, value string, pair LanguagePair) (TranslationEntry, error) {
	e := TranslationEntry{
		Key:   NormalizeKey(key),
		Value: collapseSpace(value),
		Pair:  pair,
	}
	if err := e.Validate(); err != nil {
		return TranslationEntry{}, err
	}
	return e, nil
}

// Validate checks an entry that claims to be normalized.
func (e TranslationEntry) Validate() error {
	if e.Key == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidEntry)
	}
	if e.Key != NormalizeKey(e.Key) {
		return fmt.Errorf("%w: key %q is not normalized", domain.ErrInvalidEntry, e.Key)
	}
	if strings.TrimSpace(e.Value) == "" {
		return fmt.Errorf("%w: empty value for %q", domain.ErrInvalidEntry, e.Key)
	}
	if !e.Pair.Valid() {
		return fmt.Errorf("%w: language pair %s", domain.ErrInvalidEntry, e.Pair)
	}
	return nil
}

// NormalizeKey folds case and collapses whitespace so that "Der  Hund" and
// "der hund" address the same entry.
func NormalizeKey(key string) string {
	// cases.Caser is stateful; never share one between goroutines.
	return cases.Fold().String(collapseSpace(key))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
