package storage

import "zungenrede/internal/domain/entities"

type entryID struct {
	key  string
	pair entities.LanguagePair
}

func idOf(key string, pair entities.LanguagePair) entryID {
	return entryID{key: key, pair: pair}
}

// snapshot is an immutable view of the store. Mutations build a new snapshot
// and never touch a published one.
type snapshot struct {
	entries []entities.TranslationEntry // insertion order
	index   map[entryID]int
}

func newSnapshot(entries []entities.TranslationEntry) *snapshot {
	s := &snapshot{
		entries: entries,
		index:   make(map[entryID]int, len(entries)),
	}
	for i, e := range entries {
		s.index[idOf(e.Key, e.Pair)] = i
	}
	return s
}

func (s *snapshot) get(key string, pair entities.LanguagePair) (entities.TranslationEntry, bool) {
	i, ok := s.index[idOf(key, pair)]
	if !ok {
		return entities.TranslationEntry{}, false
	}
	return s.entries[i], true
}

// with returns a snapshot where e is inserted, or overwrites the value of the
// entry with the same key and pair in place.
func (s *snapshot) with(e entities.TranslationEntry) *snapshot {
	entries := make([]entities.TranslationEntry, len(s.entries), len(s.entries)+1)
	copy(entries, s.entries)
	if i, ok := s.index[idOf(e.Key, e.Pair)]; ok {
		entries[i] = e
		return &snapshot{entries: entries, index: s.index}
	}
	return newSnapshot(append(entries, e))
}

func (s *snapshot) without(key string, pair entities.LanguagePair) *snapshot {
	drop, ok := s.index[idOf(key, pair)]
	if !ok {
		return s
	}
	entries := make([]entities.TranslationEntry, 0, len(s.entries)-1)
	entries = append(entries, s.entries[:drop]...)
	entries = append(entries, s.entries[drop+1:]...)
	return newSnapshot(entries)
}

// dedupe keeps the first position and the last value of repeated entries.
func dedupe(entries []entities.TranslationEntry) []entities.TranslationEntry {
	out := make([]entities.TranslationEntry, 0, len(entries))
	pos := make(map[entryID]int, len(entries))
	for _, e := range entries {
		id := idOf(e.Key, e.Pair)
		if i, ok := pos[id]; ok {
			out[i] = e
			continue
		}
		pos[id] = len(out)
		out = append(out, e)
	}
	return out
}
