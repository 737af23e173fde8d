package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeusync/ecsworld/internal/core/batch"
	"github.com/zeusync/ecsworld/internal/core/condition"
	"github.com/zeusync/ecsworld/internal/core/lock"
	"github.com/zeusync/ecsworld/internal/core/models"
	"github.com/zeusync/ecsworld/internal/core/observability/log"
	"github.com/zeusync/ecsworld/internal/core/systems"
)

// Builder accumulates add_* operations (spec §4.1) into a Schedule. A
// Builder is not safe for concurrent use; it is meant to be built up once,
// during world setup, then discarded in favor of the Schedule it produced.
type Builder struct {
	log   log.Log
	state func() string

	tags map[models.SystemTag]struct{}

	// optStack holds the cumulative, merged Options in effect at the
	// current nesting depth of add_system_set calls (spec's option
	// inheritance: a leaf's own options are merged on top of the set
	// stack it was added under).
	optStack []Options

	startup    []Descriptor
	frameStart []Descriptor
	frameEnd   []Descriptor
	shutdown   []Descriptor

	asyncDescs []Descriptor
	asyncPlan  batch.Plan

	predicates map[string]condition.Predicate
}

// NewBuilder constructs an empty Builder. logger receives the run_after
// discard warning (spec §4.1); it may be nil, in which case warnings are
// dropped. state reports the world's current lifecycle/game state string
// for run_in_state/run_not_in_state predicates; it may be nil, in which
// case those predicates always see the empty string.
func NewBuilder(logger log.Log, state func() string) *Builder {
	if state == nil {
		state = func() string { return "" }
	}
	return &Builder{
		log:        logger,
		state:      state,
		tags:       make(map[models.SystemTag]struct{}),
		predicates: make(map[string]condition.Predicate),
	}
}

func (b *Builder) warn(msg string, fields ...log.Field) {
	if b.log != nil {
		b.log.Warn(msg, fields...)
	}
}

// currentOptions returns the merged options in effect at the top of the
// set-nesting stack, or the zero value at the root.
func (b *Builder) currentOptions() Options {
	if len(b.optStack) == 0 {
		return Options{}
	}
	return b.optStack[len(b.optStack)-1]
}

// claim registers tag as taken, rejecting a duplicate (spec §7
// DuplicateSystem, scenario S6) and asserting sys implements
// systems.System (spec §7 NotASystem).
func (b *Builder) claim(tag models.SystemTag, sys any) (systems.System, error) {
	if _, ok := b.tags[tag]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSystem, tag)
	}
	impl, ok := sys.(systems.System)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotASystem, tag)
	}
	b.tags[tag] = struct{}{}
	return impl, nil
}

// conditionKeys turns an effective Options into the list of run-condition
// cache keys a descriptor gates on, registering the corresponding
// predicates (deduplicated by key) for the schedule's per-frame refresh.
func (b *Builder) conditionKeys(opts Options) []string {
	var keys []string
	add := func(p condition.Predicate) {
		if _, ok := b.predicates[p.Key]; !ok {
			b.predicates[p.Key] = p
		}
		keys = append(keys, p.Key)
	}
	for _, s := range opts.RunInState {
		add(condition.StateEquals(s, b.state))
	}
	for _, s := range opts.RunNotInState {
		add(condition.StateNotEquals(s, b.state))
	}
	for _, c := range opts.RunIf {
		add(condition.RunIf(c.Key, c.Eval))
	}
	return keys
}

// AddStartupSystem adds a system that runs once during the startup phase.
// Startup systems accept no gating options (spec §4.1).
func (b *Builder) AddStartupSystem(tag models.SystemTag, sys any) error {
	impl, err := b.claim(tag, sys)
	if err != nil {
		return err
	}
	b.startup = append(b.startup, Descriptor{
		Tag:   tag,
		Phase: models.PhaseStartup,
		Mode:  models.ModeSync,
		Sys:   impl,
	})
	return nil
}

// AddShutdownSystem adds a system that runs once during the shutdown phase.
// Shutdown systems accept no gating options (spec §4.1).
func (b *Builder) AddShutdownSystem(tag models.SystemTag, sys any) error {
	impl, err := b.claim(tag, sys)
	if err != nil {
		return err
	}
	b.shutdown = append(b.shutdown, Descriptor{
		Tag:   tag,
		Phase: models.PhaseShutdown,
		Mode:  models.ModeSync,
		Sys:   impl,
	})
	return nil
}

// AddFrameStartSystem adds a synchronous system to the frame_start phase.
func (b *Builder) AddFrameStartSystem(tag models.SystemTag, sys any, opts Options) error {
	d, err := b.syncDescriptor(tag, sys, models.PhaseFrameStart, opts)
	if err != nil {
		return err
	}
	b.frameStart = append(b.frameStart, d)
	return nil
}

// AddFrameEndSystem adds a synchronous system to the frame_end phase.
func (b *Builder) AddFrameEndSystem(tag models.SystemTag, sys any, opts Options) error {
	d, err := b.syncDescriptor(tag, sys, models.PhaseFrameEnd, opts)
	if err != nil {
		return err
	}
	b.frameEnd = append(b.frameEnd, d)
	return nil
}

func (b *Builder) syncDescriptor(tag models.SystemTag, sys any, phase models.Phase, opts Options) (Descriptor, error) {
	impl, err := b.claim(tag, sys)
	if err != nil {
		return Descriptor{}, err
	}
	effective := Merge(b.currentOptions(), opts)
	if len(effective.RunAfter) > 0 {
		b.warn("run_after has no effect outside the async phase; discarding",
			log.String("system", string(tag)), log.String("phase", phase.String()))
		effective.RunAfter = nil
	}
	return Descriptor{
		Tag:           tag,
		Phase:         phase,
		Mode:          models.ModeSync,
		ConditionKeys: b.conditionKeys(effective),
		Locks:         impl.LockedComponents(),
		Sys:           impl,
	}, nil
}

// AddSystem adds an async system to the batching analyzer (spec §4.2). The
// system is placed into the growing plan immediately, in insertion order,
// so run_after predecessors must already have been added.
func (b *Builder) AddSystem(tag models.SystemTag, sys any, opts Options) error {
	impl, err := b.claim(tag, sys)
	if err != nil {
		return err
	}
	effective := Merge(b.currentOptions(), opts)
	locks := impl.LockedComponents()

	plan, err := batch.Place(b.asyncPlan, batch.Candidate{
		Tag:      tag,
		Locks:    locks,
		RunAfter: effective.RunAfter,
	})
	if err != nil {
		delete(b.tags, tag)
		if errors.Is(err, batch.ErrUnknownPredecessor) {
			return fmt.Errorf("%w: %v", ErrUnknownPredecessor, err)
		}
		return err
	}
	b.asyncPlan = plan

	b.asyncDescs = append(b.asyncDescs, Descriptor{
		Tag:           tag,
		Phase:         models.PhaseAsync,
		Mode:          models.ModeAsync,
		RunAfter:      effective.RunAfter,
		ConditionKeys: b.conditionKeys(effective),
		Locks:         locks,
		Sys:           impl,
	})
	return nil
}

// AddSystemSet pushes opts merged onto the current option stack, runs fn
// against this same Builder so every add_* call inside it inherits the
// merged options (spec §4.1 option inheritance), then pops. A set's own
// RunAfter only ever matters for systems added inside it that are
// themselves async; a sync leaf warns and discards it, exactly as for a
// directly-supplied RunAfter.
func (b *Builder) AddSystemSet(opts Options, fn func(*Builder) error) error {
	b.optStack = append(b.optStack, Merge(b.currentOptions(), opts))
	defer func() { b.optStack = b.optStack[:len(b.optStack)-1] }()
	return fn(b)
}

// Finalize produces the immutable Schedule. It prepends one
// implementation-internal default-resources startup system, so it runs
// before any user startup system. That system is a no-op: no default
// resources are created.
func (b *Builder) Finalize() (*Schedule, error) {
	startup := append([]Descriptor{defaultResourcesDescriptor()}, b.startup...)

	preds := make([]condition.Predicate, 0, len(b.predicates))
	for _, p := range b.predicates {
		preds = append(preds, p)
	}

	return &Schedule{
		Startup:    startup,
		FrameStart: b.frameStart,
		Async:      b.asyncDescs,
		AsyncPlan:  b.asyncPlan,
		FrameEnd:   b.frameEnd,
		Shutdown:   b.shutdown,
		Predicates: preds,
	}, nil
}

// defaultResourcesDescriptor is the synthetic first startup system every
// schedule gets. It claims no locks and never fails; its only purpose is to
// give the world process a well-defined point to seed builtin resources
// before user startup systems run.
func defaultResourcesDescriptor() Descriptor {
	return Descriptor{
		Tag:   "__default_resources__",
		Phase: models.PhaseStartup,
		Mode:  models.ModeSync,
		Sys:   defaultResourcesSystem{},
	}
}

type defaultResourcesSystem struct{}

func (defaultResourcesSystem) LockedComponents() lock.Set { return nil }

// Execute is a no-op: nothing in this module seeds default resources, here
// or on the world's store. This system exists so finalization always has a
// concrete first descriptor to point at, matching the ordering guarantee in
// spec §4.1.
func (defaultResourcesSystem) Execute(_ context.Context, _ systems.FrameData) error { return nil }
