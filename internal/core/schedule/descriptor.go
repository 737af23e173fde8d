package schedule

import (
	"github.com/zeusync/ecsworld/internal/core/lock"
	"github.com/zeusync/ecsworld/internal/core/models"
	"github.com/zeusync/ecsworld/internal/core/systems"
)

// Descriptor is the immutable system descriptor of spec §3: identity,
// phase, mode, run_after (async only), the run-condition keys that gate it,
// and its static lock-set. Once a Schedule is finalized, no Descriptor
// changes.
type Descriptor struct {
	Tag           models.SystemTag
	Phase         models.Phase
	Mode          models.Mode
	RunAfter      []models.SystemTag
	ConditionKeys []string
	Locks         lock.Set
	Sys           systems.System
}
