package provisioning

import (
	"fmt"

	"github.com/imamik/nbctl/internal/platform/netbox"
)

// Step is one remote object created by a transaction.
type Step struct {
	Name   string           `json:"name"`
	Object netbox.ObjectRef `json:"object"`
}

// RollbackLog is the insertion ordered record of created objects.
type RollbackLog struct {
	steps []Step
	seen  map[netbox.ObjectRef]bool
}

// NewRollbackLog creates an empty log.
func NewRollbackLog() *RollbackLog {
	return &RollbackLog{seen: make(map[netbox.ObjectRef]bool)}
}

// Append records a created object. The same object cannot be recorded twice.
func (l *RollbackLog) Append(step Step) error {
	if step.Object.Kind == "" || step.Object.ID == 0 {
		return fmt.Errorf("step %q: object reference is incomplete", step.Name)
	}
	key := netbox.ObjectRef{Kind: step.Object.Kind, ID: step.Object.ID}
	if l.seen[key] {
		return fmt.Errorf("step %q: %s already recorded", step.Name, step.Object)
	}
	l.seen[key] = true
	l.steps = append(l.steps, step)
	return nil
}

// Len returns the number of recorded steps.
func (l *RollbackLog) Len() int {
	return len(l.steps)
}

// Steps returns a copy of the recorded steps in insertion order.
func (l *RollbackLog) Steps() []Step {
	out := make([]Step, len(l.steps))
	copy(out, l.steps)
	return out
}

// Drain empties the log and returns its steps newest first.
func (l *RollbackLog) Drain() []Step {
	out := make([]Step, 0, len(l.steps))
	for i := len(l.steps) - 1; i >= 0; i-- {
		out = append(out, l.steps[i])
	}
	l.steps = nil
	l.seen = make(map[netbox.ObjectRef]bool)
	return out
}
