package app

import (
	"os"
	"sync/atomic"
)

// testModeEnv is exported by the root testing package so binaries linked
// into tests never open sockets or pools.
const testModeEnv = "SOCIALGRAPH_TEST_MODE"

const (
	modeUnknown int32 = iota
	modeOff
	modeOn
)

var testMode atomic.Int32

// InTestMode reports whether the application should skip runtime side
// effects. The environment is read on first use.
func InTestMode() bool {
	switch testMode.Load() {
	case modeOn:
		return true
	case modeOff:
		return false
	}
	return RefreshTestMode()
}

// RefreshTestMode re-reads the environment and returns the new value.
func RefreshTestMode() bool {
	on := os.Getenv(testModeEnv) == "1"
	if on {
		testMode.Store(modeOn)
	} else {
		testMode.Store(modeOff)
	}
	return on
}
