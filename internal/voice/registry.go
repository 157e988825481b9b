package voice

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"voicenav/internal/domain"
)

// ErrNilHandler is returned when a command is registered without a handler.
var ErrNilHandler = errors.New("nil handler")

// Handler runs a matched command.
type Handler func(ctx context.Context, b Binding) error

// Scope decides whether a command is active on a page. It must be pure.
// A nil Scope marks a global command.
type Scope func(pc domain.PageContext) bool

// OnPage activates a command when the page path contains marker.
func OnPage(marker string) Scope {
	return func(pc domain.PageContext) bool {
		return strings.Contains(pc.Path, marker)
	}
}

// Entry is a registered command.
type Entry struct {
	Pattern *Pattern
	Handler Handler
	Scope   Scope
}

func (e *Entry) Global() bool {
	return e.Scope == nil
}

func (e *Entry) activeOn(pc domain.PageContext) bool {
	return e.Scope == nil || e.Scope(pc)
}

// Registry holds the commands of one page session in registration order.
// Commands are registered up front and never change afterwards, so reads
// need no locking.
type Registry struct {
	entries []*Entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register compiles pattern and appends the command. Malformed patterns are
// rejected here rather than at dispatch time.
func (r *Registry) Register(pattern string, handler Handler, scope Scope) error {
	if handler == nil {
		return fmt.Errorf("registering %q: %w", pattern, ErrNilHandler)
	}

	p, err := Compile(pattern)
	if err != nil {
		return fmt.Errorf("registering command: %w", err)
	}

	r.entries = append(r.entries, &Entry{
		Pattern: p,
		Handler: handler,
		Scope:   scope,
	})
	return nil
}

// MustRegister is Register for static command sets; it panics on error.
func (r *Registry) MustRegister(pattern string, handler Handler, scope Scope) {
	if err := r.Register(pattern, handler, scope); err != nil {
		panic(err)
	}
}

// CommandsFor yields the commands active on pc. Page-scoped commands come
// first, then global ones, each tier in registration order.
func (r *Registry) CommandsFor(pc domain.PageContext) iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range r.entries {
			if !e.Global() && e.activeOn(pc) {
				if !yield(e) {
					return
				}
			}
		}
		for _, e := range r.entries {
			if e.Global() {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Entries returns every registered command regardless of scope.
func (r *Registry) Entries() []*Entry {
	return append([]*Entry(nil), r.entries...)
}

// Phrases returns the literal part of every pattern, used as a vocabulary hint
// for speech recognition.
func (r *Registry) Phrases() []string {
	phrases := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		if lits := e.Pattern.Literals(); len(lits) > 0 {
			phrases = append(phrases, strings.Join(lits, " "))
		}
	}
	return phrases
}

func (r *Registry) Len() int {
	return len(r.entries)
}
