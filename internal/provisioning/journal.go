package provisioning

import (
	"encoding/json"
	"time"
)

// Journal is the archived record of one transaction.
type Journal struct {
	ID               string           `json:"id"`
	Operation        string           `json:"operation"`
	StartedAt        time.Time        `json:"started_at"`
	FinishedAt       time.Time        `json:"finished_at"`
	Outcome          string           `json:"outcome"`
	Error            string           `json:"error,omitempty"`
	Transitions      []Transition     `json:"transitions"`
	Steps            []Step           `json:"steps"`
	RollbackFailures []JournalFailure `json:"rollback_failures,omitempty"`
	// Untracked lists objects that were created but never entered the rollback log.
	Untracked []Step `json:"untracked,omitempty"`
}

// JournalFailure is a rollback failure in serializable form.
type JournalFailure struct {
	Step  Step   `json:"step"`
	Error string `json:"error"`
}

// Journal builds the journal for the transaction's current state.
func (t *Transaction) Journal(outcome string, err error) *Journal {
	j := &Journal{
		ID:          t.id,
		Operation:   t.operation,
		StartedAt:   t.started,
		FinishedAt:  t.now(),
		Outcome:     outcome,
		Transitions: t.History(),
		Steps:       append([]Step{}, t.recorded...),
		Untracked:   append([]Step(nil), t.untracked...),
	}
	if err != nil {
		j.Error = err.Error()
	}
	for _, f := range t.failures {
		j.RollbackFailures = append(j.RollbackFailures, JournalFailure{Step: f.Step, Error: f.Err.Error()})
	}
	return j
}

// Marshal encodes the journal as indented JSON.
func (j *Journal) Marshal() ([]byte, error) {
	return json.MarshalIndent(j, "", "  ")
}
