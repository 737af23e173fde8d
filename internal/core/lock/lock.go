// Package lock implements the component-lock grammar a system declares
// statically (spec §4, §4.2): the set of component types a system may
// mutate, each either a bare component type or a pair scoped to an
// entity-tag component. Conflict detection is a pure function over two
// lock-sets, hashed with xxhash the way syncv2's sharded variable keys are
// hashed, so the batching analyzer's placement scan stays O(1) per
// comparison instead of walking two slices.
package lock

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/ecsworld/internal/core/models"
)

// Entry is one locked component, optionally scoped to an entity-tag
// component. An Entry built with Bare covers the component type across every
// entity; one built with Scoped is scoped even when its Tag is zero, since
// scoping is recorded by the constructor, not by Tag's value.
type Entry struct {
	Component models.ComponentID
	Tag       models.ComponentID
	scoped    bool
}

// Bare declares a lock on a component type across all entities.
func Bare(c models.ComponentID) Entry {
	return Entry{Component: c}
}

// Scoped declares a lock on a component type restricted to entities carrying
// the given entity-tag component.
func Scoped(c, tag models.ComponentID) Entry {
	return Entry{Component: c, Tag: tag, scoped: true}
}

// IsScoped reports whether the entry carries an entity-tag restriction.
func (e Entry) IsScoped() bool { return e.scoped }

func (e Entry) String() string {
	if e.scoped {
		return fmt.Sprintf("C%d@T%d", e.Component, e.Tag)
	}
	return fmt.Sprintf("C%d", e.Component)
}

func (e Entry) componentHash() uint64 {
	return xxhash.Sum64String(strconv.FormatUint(uint64(e.Component), 10))
}

func (e Entry) pairHash() uint64 {
	return xxhash.Sum64String(strconv.FormatUint(uint64(e.Component), 10) + "@" + strconv.FormatUint(uint64(e.Tag), 10))
}

// Set is an immutable component-lock set, as declared by a single system.
type Set []Entry

// Conflicts reports whether a and b may not safely run in the same batch,
// per the three rules of spec §4.2:
//   - they share a bare component type;
//   - one has a bare C and the other has (C, any tag);
//   - they share the identical (C, tag) pair.
//
// A bare lock on C conflicts with anything else on C, tagged or not — rules
// one and two collapse into "C appears anywhere in the other set". A scoped
// lock only additionally conflicts with an exact (C, tag) match in the other
// set; two different tags on the same component do not conflict.
func Conflicts(a, b Set) bool {
	anyComponentA := make(map[uint64]struct{}, len(a))
	bareComponentA := make(map[uint64]struct{}, len(a))
	pairA := make(map[uint64]struct{}, len(a))
	for _, e := range a {
		h := e.componentHash()
		anyComponentA[h] = struct{}{}
		if e.scoped {
			pairA[e.pairHash()] = struct{}{}
		} else {
			bareComponentA[h] = struct{}{}
		}
	}

	for _, e := range b {
		if !e.scoped {
			if _, ok := anyComponentA[e.componentHash()]; ok {
				return true
			}
			continue
		}
		if _, ok := bareComponentA[e.componentHash()]; ok {
			return true
		}
		if _, ok := pairA[e.pairHash()]; ok {
			return true
		}
	}
	return false
}
