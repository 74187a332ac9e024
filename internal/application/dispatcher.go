package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"zungenrede/internal/domain"
	"zungenrede/internal/domain/entities"
	"zungenrede/internal/ports/input"
	"zungenrede/internal/ports/output"
)

const (
	// listLimit caps the lines of a list reply; export covers the rest.
	listLimit     = 50
	mirrorTimeout = 5 * time.Second
	exportName    = "translations_storage.json"
)

var _ input.MessageHandler = (*Dispatcher)(nil)

// Authorizer decides whether a principal may use gated commands.
type Authorizer interface {
	Authorize(p entities.Principal) error
}

// DispatcherConfig holds the reply locale and the read policy.
type DispatcherConfig struct {
	Locale string
	// AuthorizeReads gates lookup, list, stats and export as well.
	AuthorizeReads bool
}

// Dispatcher turns one inbound message into one reply: parse, authorize,
// execute, respond. It keeps no state between messages.
type Dispatcher struct {
	store   output.TranslationStore
	gate    Authorizer
	catalog output.Catalog
	mirror  output.TranslationMirror
	cfg     DispatcherConfig
	log     logrus.FieldLogger

	// mirrorMu orders replication: each call copies the store state current
	// under the lock, so the last one to run leaves the mirror up to date.
	mirrorMu sync.Mutex
}

// NewDispatcher wires the use case. mirror may be nil.
func NewDispatcher(
	store output.TranslationStore,
	gate Authorizer,
	catalog output.Catalog,
	mirror output.TranslationMirror,
	cfg DispatcherConfig,
	log logrus.FieldLogger,
) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		store:   store,
		gate:    gate,
		catalog: catalog,
		mirror:  mirror,
		cfg:     cfg,
		log:     log,
	}
}

// OnMessage handles one message from principal. Per-request failures become
// replies; nothing here terminates the process. A context cancelled before
// execution yields an empty reply and no side effects.
func (d *Dispatcher) OnMessage(ctx context.Context, principal entities.Principal, text string) input.Reply {
	log := d.log.WithField("principal", principal)

	cmd, err := ParseCommand(text)
	if err != nil {
		var invalid *domain.InvalidCommandError
		if errors.As(err, &invalid) {
			log.WithError(err).Debug("invalid command")
			return d.text("reply.invalid", map[string]any{"Usage": d.t(invalid.Usage, nil)})
		}
		log.WithError(err).Error("parse command")
		return d.text("reply.internal_error", nil)
	}
	if cmd.Kind == CommandNone {
		return input.Reply{}
	}
	log = log.WithField("command", cmd.Kind)

	if ctx.Err() != nil {
		return input.Reply{}
	}
	if d.gated(cmd.Kind) {
		if err := d.gate.Authorize(principal); err != nil {
			log.Info("access denied")
			return d.text("reply.denied", nil)
		}
	}
	if ctx.Err() != nil {
		return input.Reply{}
	}

	reply, err := d.execute(ctx, cmd)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.WithError(err).Debug("request cancelled before execution")
			return input.Reply{}
		}
		log.WithError(err).Error("command failed")
		return d.text("reply.internal_error", nil)
	}
	return reply
}

func (d *Dispatcher) gated(k CommandKind) bool {
	return k.Mutating() || (d.cfg.AuthorizeReads && k.ReadsStore())
}

func (d *Dispatcher) execute(ctx context.Context, cmd Command) (input.Reply, error) {
	switch cmd.Kind {
	case CommandHelp:
		return d.text("reply.help", nil), nil

	case CommandLookup:
		e, ok := d.store.Get(cmd.Key, cmd.Pair)
		if !ok {
			return d.text("reply.not_found", pairData(cmd.Key, cmd.Pair)), nil
		}
		return d.text("reply.found", entryData(e)), nil

	case CommandAdd:
		if err := d.store.Put(ctx, cmd.Entry); err != nil {
			return input.Reply{}, fmt.Errorf("put %q: %w", cmd.Entry.Key, err)
		}
		d.replicateKey(ctx, cmd.Entry.Key, cmd.Entry.Pair)
		return d.text("reply.added", entryData(cmd.Entry)), nil

	case CommandRemove:
		removed, err := d.store.Remove(ctx, cmd.Key, cmd.Pair)
		if err != nil {
			return input.Reply{}, fmt.Errorf("remove %q: %w", cmd.Key, err)
		}
		if !removed {
			return d.text("reply.not_found", pairData(cmd.Key, cmd.Pair)), nil
		}
		d.replicateKey(ctx, cmd.Key, cmd.Pair)
		return d.text("reply.removed", pairData(cmd.Key, cmd.Pair)), nil

	case CommandList:
		return d.list(cmd), nil

	case CommandStats:
		return d.stats(), nil

	case CommandClear:
		n, err := d.store.Clear(ctx)
		if err != nil {
			return input.Reply{}, fmt.Errorf("clear: %w", err)
		}
		if n > 0 {
			d.replicateAll(ctx)
		}
		return d.text("reply.cleared", map[string]any{"Count": n}), nil

	case CommandExport:
		data, n, err := d.store.Export()
		if err != nil {
			return input.Reply{}, fmt.Errorf("export: %w", err)
		}
		reply := d.text("reply.export", map[string]any{"Count": n})
		reply.Attachment = &input.Attachment{
			Name:        exportName,
			ContentType: "application/json",
			Data:        data,
		}
		return reply, nil

	case CommandUnknown:
		return d.text("reply.unknown", map[string]any{"Command": cmd.Word}), nil
	}
	return input.Reply{}, fmt.Errorf("unhandled command kind %s", cmd.Kind)
}

func (d *Dispatcher) list(cmd Command) input.Reply {
	var filter *entities.LanguagePair
	if cmd.HasPair {
		filter = &cmd.Pair
	}

	var b strings.Builder
	total := 0
	for e := range d.store.List(filter) {
		total++
		if total <= listLimit {
			fmt.Fprintf(&b, "%s  %s = %s\n", e.Pair, e.Key, e.Value)
		}
	}
	if total == 0 {
		return d.text("reply.list.empty", nil)
	}

	out := d.t("reply.list.header", map[string]any{"Count": total}) + "\n" + b.String()
	if total > listLimit {
		out += d.t("reply.list.more", map[string]any{"Count": total - listLimit})
	}
	return input.Reply{Text: strings.TrimRight(out, "\n")}
}

func (d *Dispatcher) stats() input.Reply {
	counts := d.store.Stats()
	if len(counts) == 0 {
		return d.text("reply.list.empty", nil)
	}
	var lines strings.Builder
	total := 0
	for _, c := range counts {
		total += c.Count
		fmt.Fprintf(&lines, "\n%s: %d", c.Pair, c.Count)
	}
	header := d.t("reply.stats.header", map[string]any{"Count": total})
	return input.Reply{Text: header + lines.String()}
}

// replicateKey copies the current store state of one key to the mirror:
// upsert when present, delete when gone.
func (d *Dispatcher) replicateKey(ctx context.Context, key string, pair entities.LanguagePair) {
	d.replicate(ctx, "sync key", func(ctx context.Context) error {
		if e, ok := d.store.Get(key, pair); ok {
			return d.mirror.Upsert(ctx, e)
		}
		return d.mirror.Delete(ctx, key, pair)
	})
}

// replicateAll copies the whole store content to the mirror.
func (d *Dispatcher) replicateAll(ctx context.Context) {
	d.replicate(ctx, "sync all", func(ctx context.Context) error {
		entries := slices.Collect(d.store.List(nil))
		if len(entries) == 0 {
			return d.mirror.Truncate(ctx)
		}
		return d.mirror.Resync(ctx, entries)
	})
}

// replicate runs fn against the mirror after a commit. The store already
// holds the change, so the call survives request cancellation and only logs
// failures.
func (d *Dispatcher) replicate(ctx context.Context, op string, fn func(context.Context) error) {
	if d.mirror == nil {
		return
	}
	d.mirrorMu.Lock()
	defer d.mirrorMu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		d.log.WithField("op", op).WithError(err).Warn("mirror update failed")
	}
}

func (d *Dispatcher) t(key string, data map[string]any) string {
	return d.catalog.T(d.cfg.Locale, key, data)
}

func (d *Dispatcher) text(key string, data map[string]any) input.Reply {
	return input.Reply{Text: d.t(key, data)}
}

func pairData(key string, pair entities.LanguagePair) map[string]any {
	return map[string]any{"Key": key, "Source": pair.Source, "Target": pair.Target}
}

func entryData(e entities.TranslationEntry) map[string]any {
	data := pairData(e.Key, e.Pair)
	data["Value"] = e.Value
	return data
}
