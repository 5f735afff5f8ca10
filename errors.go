package tick

import "errors"

var (
	// Store errors.
	ErrNoStore     = errors.New("tick: no store configured")
	ErrStoreClosed = errors.New("tick: store closed")

	// Lifecycle errors.
	ErrLoopRunning    = errors.New("tick: loop already running")
	ErrLoopNotRunning = errors.New("tick: loop not running")

	// Cron errors.
	ErrDuplicateCron = errors.New("tick: duplicate cron entry")
	ErrCronNotFound  = errors.New("tick: cron entry not found")
)
