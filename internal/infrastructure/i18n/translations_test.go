package i18n

import (
	"sort"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func newTestTranslator(t *testing.T) (*Translator, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	tr, err := NewTranslator("en", log)
	require.NoError(t, err)
	return tr, hook
}

func TestNewTranslator_RejectsBadLocale(t *testing.T) {
	_, err := NewTranslator("not a locale!", nil)
	require.Error(t, err)
}

func TestTranslator_Languages(t *testing.T) {
	tr, _ := newTestTranslator(t)

	var got []string
	for _, tag := range tr.Languages() {
		got = append(got, tag.String())
	}
	require.ElementsMatch(t, []string{"en", "ru"}, got)
}

func TestTranslator_TemplateData(t *testing.T) {
	tr, _ := newTestTranslator(t)

	got := tr.T("en", "reply.found", map[string]any{
		"Key": "hund", "Source": "de", "Target": "en", "Value": "dog",
	})
	require.Equal(t, "hund (de) -> dog (en)", got)
}

func TestTranslator_Plural(t *testing.T) {
	tr, _ := newTestTranslator(t)

	require.Equal(t, "1 translation:", tr.T("en", "reply.list.header", map[string]any{"Count": 1}))
	require.Equal(t, "3 translations:", tr.T("en", "reply.list.header", map[string]any{"Count": 3}))

	require.Equal(t, "1 перевод:", tr.T("ru", "reply.list.header", map[string]any{"Count": 1}))
	require.Equal(t, "3 перевода:", tr.T("ru", "reply.list.header", map[string]any{"Count": 3}))
	require.Equal(t, "5 переводов:", tr.T("ru", "reply.list.header", map[string]any{"Count": 5}))
}

func TestTranslator_FallsBackToDefaultLanguage(t *testing.T) {
	tr, _ := newTestTranslator(t)

	require.Equal(t, tr.T("en", "reply.denied", nil), tr.T("de", "reply.denied", nil))
	require.Equal(t, tr.T("en", "reply.denied", nil), tr.T("", "reply.denied", nil))
}

func TestTranslator_UnknownKey(t *testing.T) {
	tr, hook := newTestTranslator(t)

	require.Equal(t, "reply.nope", tr.T("en", "reply.nope", nil))
	require.NotNil(t, hook.LastEntry())
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	require.Empty(t, tr.T("en", "", nil))
}

func TestCatalogs_SameKeys(t *testing.T) {
	keysOf := func(file string) []string {
		data, err := localeFS.ReadFile(file)
		require.NoError(t, err)
		var messages map[string]any
		require.NoError(t, toml.Unmarshal(data, &messages))
		keys := make([]string, 0, len(messages))
		for k := range messages {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}

	en := keysOf("active.en.toml")
	require.NotEmpty(t, en)
	for _, file := range catalogFiles[1:] {
		require.Equal(t, en, keysOf(file), file)
	}
}
