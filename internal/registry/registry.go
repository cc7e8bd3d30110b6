// Package registry tracks one-shot hardware claims made during startup:
// which PIO state machine backs which RS-485 channel. Claims are
// made once during orchestrator init and never released, mirroring the
// original firmware's static per-channel state-machine assignment.
package registry

import (
	"fmt"
	"sync"
)

// StateMachineKey identifies one state machine slot on one PIO block.
type StateMachineKey struct {
	PIO uint8 // 0 or 1
	SM  uint8 // 0..3
}

var (
	mu     sync.RWMutex
	claims = map[StateMachineKey]string{}
)

// ClaimStateMachine records that owner now owns key. It panics if the slot
// is already claimed: a double claim means the board wiring table handed
// out the same state machine to two channels, which is a build-time bug,
// not a runtime condition to recover from.
func ClaimStateMachine(key StateMachineKey, owner string) {
	mu.Lock()
	defer mu.Unlock()
	if existing, ok := claims[key]; ok {
		panic(fmt.Sprintf("registry: PIO%d SM%d already claimed by %q, cannot assign to %q", key.PIO, key.SM, existing, owner))
	}
	claims[key] = owner
}

// Owner reports the owner of key, if claimed.
func Owner(key StateMachineKey) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	owner, ok := claims[key]
	return owner, ok
}
