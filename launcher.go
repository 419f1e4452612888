package seleniumgrid

import "github.com/wagiedev/selenium-grid-go/internal/config"

// Launcher spawns child processes. Supply one with WithLauncher to replace
// process creation, for example in tests.
type Launcher = config.Launcher

// Handle is a spawned child process.
type Handle = config.Handle

// ProcessSpec describes a child to launch.
type ProcessSpec = config.ProcessSpec

// SpawnResult is the outcome of Launcher.Spawn.
type SpawnResult = config.SpawnResult

// SpawnOutcome tags a SpawnResult.
type SpawnOutcome = config.SpawnOutcome

const (
	// OutcomeSpawned means the child is running.
	OutcomeSpawned = config.OutcomeSpawned
	// OutcomeAddressInUse means the address was already bound at spawn.
	OutcomeAddressInUse = config.OutcomeAddressInUse
	// OutcomeFailed means the child could not be launched.
	OutcomeFailed = config.OutcomeFailed
)

// Discoverer resolves the binaries for a mode.
type Discoverer = config.Discoverer

// Binaries holds resolved binary paths.
type Binaries = config.Binaries
