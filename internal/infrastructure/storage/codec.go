package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"zungenrede/internal/domain"
	"zungenrede/internal/domain/entities"
)

// record is the on-disk shape of one entry.
type record struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// Encode serializes entries, in order, into the storage document.
func Encode(entries []entities.TranslationEntry) ([]byte, error) {
	records := make([]record, len(entries))
	for i, e := range entries {
		records[i] = record{
			Key:        e.Key,
			Value:      e.Value,
			SourceLang: e.Pair.Source,
			TargetLang: e.Pair.Target,
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode translations: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a storage document. Keys and language codes are normalized,
// values are kept byte for byte; an invalid entry or a duplicate (key, pair)
// fails the whole document. An empty document is an empty store.
func Decode(data []byte) ([]entities.TranslationEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode translations: %w", err)
	}

	out := make([]entities.TranslationEntry, 0, len(records))
	seen := make(map[entryID]int, len(records))
	for i, r := range records {
		pair, err := entities.ParseLanguagePair(r.SourceLang, r.TargetLang)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		e := entities.TranslationEntry{
			Key:   entities.NormalizeKey(r.Key),
			Value: r.Value,
			Pair:  pair,
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		id := idOf(e.Key, e.Pair)
		if first, dup := seen[id]; dup {
			return nil, fmt.Errorf("entry %d: %w: duplicate of entry %d (%s %q)",
				i, domain.ErrInvalidEntry, first, e.Pair, e.Key)
		}
		seen[id] = i
		out = append(out, e)
	}
	return out, nil
}
