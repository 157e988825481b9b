package voice

import (
	"context"
	"fmt"
	"log/slog"

	"voicenav/internal/domain"
)

// Result describes what a dispatch did. An unmatched utterance is not an error.
type Result struct {
	Utterance string // normalized
	Matched   bool
	Pattern   string
	Binding   Binding
	Err       error // handler failure, already logged
}

// Dispatcher routes utterances to the first matching command of a Registry.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger,
	}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs at most one handler for utterance. Handler errors and panics
// are logged and returned in the Result, never propagated.
func (d *Dispatcher) Dispatch(ctx context.Context, utterance string, pc domain.PageContext) Result {
	res := Result{Utterance: Normalize(utterance)}
	if res.Utterance == "" {
		return res
	}

	for entry := range d.registry.CommandsFor(pc) {
		binding, ok := entry.Pattern.Match(res.Utterance)
		if !ok {
			continue
		}

		res.Matched = true
		res.Pattern = entry.Pattern.String()
		res.Binding = binding

		d.logger.Info("command matched",
			"pattern", res.Pattern,
			"values", binding.Values(),
			"path", pc.Path,
		)

		if err := d.invoke(ctx, entry, binding); err != nil {
			d.logger.Error("command handler failed", "pattern", res.Pattern, "error", err)
			res.Err = err
		}
		return res
	}

	d.logger.Debug("no command matched", "utterance", res.Utterance, "path", pc.Path)
	return res
}

func (d *Dispatcher) invoke(ctx context.Context, entry *Entry, b Binding) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler for %q panicked: %v", entry.Pattern, r)
		}
	}()

	if err = entry.Handler(ctx, b); err != nil {
		return fmt.Errorf("handling %q: %w", entry.Pattern, err)
	}
	return nil
}
