package lock

import (
	"testing"

	"github.com/zeusync/ecsworld/internal/core/models"
)

const (
	c1 = models.ComponentID(1)
	c2 = models.ComponentID(2)
	t1 = models.ComponentID(100)
	t2 = models.ComponentID(200)
)

func TestConflicts(t *testing.T) {
	cases := []struct {
		name string
		a, b Set
		want bool
	}{
		{"disjoint bare", Set{Bare(c1)}, Set{Bare(c2)}, false},
		{"same bare", Set{Bare(c1)}, Set{Bare(c1)}, true},
		{"bare vs scoped same component", Set{Bare(c1)}, Set{Scoped(c1, t1)}, true},
		{"scoped vs bare same component", Set{Scoped(c1, t1)}, Set{Bare(c1)}, true},
		{"scoped same pair", Set{Scoped(c1, t1)}, Set{Scoped(c1, t1)}, true},
		{"scoped different tags", Set{Scoped(c1, t1)}, Set{Scoped(c1, t2)}, false},
		{"scoped different components", Set{Scoped(c1, t1)}, Set{Scoped(c2, t1)}, false},
		{"empty sets", Set{}, Set{}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Conflicts(c.a, c.b); got != c.want {
				t.Fatalf("Conflicts(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
			if got := Conflicts(c.b, c.a); got != c.want {
				t.Fatalf("Conflicts is not symmetric for %v, %v", c.a, c.b)
			}
		})
	}
}
