// Package condition implements the run-condition engine (spec §4.3): a
// cache of nullary boolean predicates, refreshed exactly once per frame and
// read-only for the rest of the frame. Per-system gating is conjunction
// over the system's declared predicates.
package condition

import (
	"errors"
	"fmt"
)

// ErrBadCondition is returned when a predicate's Eval reports an error. A
// panic inside Eval is not recovered. Fatal at frame start (spec §7).
var ErrBadCondition = errors.New("run condition did not evaluate to a boolean result")

// Predicate is one cacheable boolean check. Key is its identity for caching
// purposes — two predicates with the same Key are treated as the same
// predicate and evaluated only once per frame, as the engine's cache is
// keyed by Key, not by Go function identity (funcs are not comparable).
type Predicate struct {
	Key  string
	Eval func() (bool, error)
}

// Engine caches the boolean result of every distinct predicate seen so far,
// refreshed once per frame by Refresh and read through Result for the rest
// of the frame.
type Engine struct {
	cache map[string]bool
}

// New creates an empty run-condition cache.
func New() *Engine {
	return &Engine{cache: make(map[string]bool)}
}

// Refresh evaluates every distinct predicate in preds exactly once and
// replaces the cache with the fresh results. It is the only method that
// mutates the cache; called once at the start of every frame (spec §4.4
// "start_frame").
func (e *Engine) Refresh(preds []Predicate) error {
	fresh := make(map[string]bool, len(preds))
	for _, p := range preds {
		if _, done := fresh[p.Key]; done {
			continue
		}
		ok, err := p.Eval()
		if err != nil {
			return fmt.Errorf("%s: %w: %v", p.Key, ErrBadCondition, err)
		}
		fresh[p.Key] = ok
	}
	e.cache = fresh
	return nil
}

// Result returns the cached value for a predicate key. Unknown keys
// (predicates never passed to the latest Refresh) evaluate to false.
func (e *Engine) Result(key string) bool {
	return e.cache[key]
}

// Gate reports whether every predicate key in keys is true in the current
// cache — conjunction semantics (spec §4.3). A system with no predicates
// always runs.
func (e *Engine) Gate(keys []string) bool {
	for _, k := range keys {
		if !e.Result(k) {
			return false
		}
	}
	return true
}

// StateEquals builds the Key/Eval pair for a run_in_state(s) predicate: the
// current state, read through stateFn, must equal s.
func StateEquals(s string, stateFn func() string) Predicate {
	return Predicate{
		Key:  "state==" + s,
		Eval: func() (bool, error) { return stateFn() == s, nil },
	}
}

// StateNotEquals builds the Key/Eval pair for a run_not_in_state(s)
// predicate.
func StateNotEquals(s string, stateFn func() string) Predicate {
	return Predicate{
		Key:  "state!=" + s,
		Eval: func() (bool, error) { return stateFn() != s, nil },
	}
}

// RunIf wraps a user-supplied nullary predicate under a caller-chosen
// identity key (spec's "(M,F)" pair — module and function name).
func RunIf(key string, fn func() (bool, error)) Predicate {
	return Predicate{Key: key, Eval: fn}
}
