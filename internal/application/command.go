package application

import (
	"strings"

	"zungenrede/internal/domain"
	"zungenrede/internal/domain/entities"
)

// CommandKind is the closed set of commands the bot understands.
type CommandKind int

const (
	CommandNone CommandKind = iota // blank message
	CommandUnknown
	CommandHelp
	CommandLookup
	CommandAdd
	CommandRemove
	CommandList
	CommandStats
	CommandClear
	CommandExport
)

var commandNames = map[CommandKind]string{
	CommandNone:    "none",
	CommandUnknown: "unknown",
	CommandHelp:    "help",
	CommandLookup:  "lookup",
	CommandAdd:     "add",
	CommandRemove:  "remove",
	CommandList:    "list",
	CommandStats:   "stats",
	CommandClear:   "clear",
	CommandExport:  "export",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "invalid"
}

// Mutating reports whether the command changes the store.
func (k CommandKind) Mutating() bool {
	switch k {
	case CommandAdd, CommandRemove, CommandClear:
		return true
	}
	return false
}

// ReadsStore reports whether the command reveals store content.
func (k CommandKind) ReadsStore() bool {
	switch k {
	case CommandLookup, CommandList, CommandStats, CommandExport:
		return true
	}
	return false
}

var commandWords = map[string]CommandKind{
	"help":   CommandHelp,
	"start":  CommandHelp,
	"lookup": CommandLookup,
	"get":    CommandLookup,
	"add":    CommandAdd,
	"set":    CommandAdd,
	"remove": CommandRemove,
	"delete": CommandRemove,
	"list":   CommandList,
	"stats":  CommandStats,
	"clear":  CommandClear,
	"export": CommandExport,
}

// Usage message keys.
const (
	usageLookup = "usage.lookup"
	usageAdd    = "usage.add"
	usageRemove = "usage.remove"
	usageList   = "usage.list"
)

// Command is a parsed inbound message.
type Command struct {
	Kind CommandKind
	Word string // command word as typed, lowercased

	Pair    entities.LanguagePair
	HasPair bool
	Key     string
	Entry   entities.TranslationEntry // CommandAdd only
}

// ParseCommand classifies raw message text. Malformed arguments return a
// *domain.InvalidCommandError carrying the usage message key.
func ParseCommand(text string) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{Kind: CommandNone}, nil
	}
	word := commandWord(fields[0])
	args := fields[1:]

	kind, ok := commandWords[word]
	if !ok {
		return Command{Kind: CommandUnknown, Word: word}, nil
	}
	cmd := Command{Kind: kind, Word: word}

	switch kind {
	case CommandLookup, CommandRemove:
		usage := usageLookup
		if kind == CommandRemove {
			usage = usageRemove
		}
		if len(args) < 3 {
			return Command{}, &domain.InvalidCommandError{Usage: usage}
		}
		pair, err := entities.ParseLanguagePair(args[0], args[1])
		if err != nil {
			return Command{}, &domain.InvalidCommandError{Usage: usage, Reason: err}
		}
		cmd.Pair, cmd.HasPair = pair, true
		cmd.Key = entities.NormalizeKey(strings.Join(args[2:], " "))

	case CommandAdd:
		// "add src dst a=b" is complete; the key/value split decides the rest.
		if len(args) < 3 {
			return Command{}, &domain.InvalidCommandError{Usage: usageAdd}
		}
		pair, err := entities.ParseLanguagePair(args[0], args[1])
		if err != nil {
			return Command{}, &domain.InvalidCommandError{Usage: usageAdd, Reason: err}
		}
		key, value := splitKeyValue(args[2:])
		entry, err := entities.NewTranslationEntry(key, value, pair)
		if err != nil {
			return Command{}, &domain.InvalidCommandError{Usage: usageAdd, Reason: err}
		}
		cmd.Pair, cmd.HasPair = pair, true
		cmd.Key = entry.Key
		cmd.Entry = entry

	case CommandList:
		switch len(args) {
		case 0:
		case 2:
			pair, err := entities.ParseLanguagePair(args[0], args[1])
			if err != nil {
				return Command{}, &domain.InvalidCommandError{Usage: usageList, Reason: err}
			}
			cmd.Pair, cmd.HasPair = pair, true
		default:
			return Command{}, &domain.InvalidCommandError{Usage: usageList}
		}
	}
	return cmd, nil
}

// commandWord strips chat decorations: "/Add@zungen_bot" -> "add".
func commandWord(raw string) string {
	w := strings.TrimLeft(raw, "/!")
	if at := strings.IndexByte(w, '@'); at >= 0 {
		w = w[:at]
	}
	return strings.ToLower(w)
}

// splitKeyValue splits "good morning = guten Morgen" on the first "=";
// without one the first token is the key.
func splitKeyValue(tokens []string) (key, value string) {
	joined := strings.Join(tokens, " ")
	if k, v, ok := strings.Cut(joined, "="); ok {
		return k, v
	}
	return tokens[0], strings.Join(tokens[1:], " ")
}
