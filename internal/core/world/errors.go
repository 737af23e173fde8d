package world

import "errors"

var (
	// ErrBadConfig fires when a Config fails Validate (spec §6 "Configuration",
	// §7 BadConfig) — currently only an invalid FPSLimit.
	ErrBadConfig = errors.New("invalid world configuration")

	// ErrDebugDisabled fires when DebugSnapshot is called on a World built
	// with Config.DebugEnabled == false (spec §6 "Debug surface", §7).
	ErrDebugDisabled = errors.New("debug snapshot requested while debug mode is disabled")
)
