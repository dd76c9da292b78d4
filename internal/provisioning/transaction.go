package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imamik/nbctl/internal/config"
	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/util/retry"
)

// State is a transaction lifecycle state.
type State string

// Transaction states.
const (
	StateValidating  State = "validating"
	StateAllocating  State = "allocating"
	StateCommitting  State = "committing"
	StateCommitted   State = "committed"
	StateRollingBack State = "rolling_back"
	StateFailed      State = "failed"
)

var transitions = map[State][]State{
	StateValidating:  {StateAllocating, StateFailed},
	StateAllocating:  {StateCommitting, StateFailed},
	StateCommitting:  {StateCommitted, StateRollingBack},
	StateCommitted:   {StateRollingBack},
	StateRollingBack: {StateFailed},
}

// Outcome labels recorded in the journal and metrics.
const (
	OutcomeCommitted          = "committed"
	OutcomeFailed             = "failed"
	OutcomeRolledBack         = "rolled_back"
	OutcomeRollbackIncomplete = "rollback_incomplete"
	OutcomeDiscarded          = "discarded"
	OutcomeDryRun             = "dry_run"
)

// ErrInvalidTransition is returned by Advance for a move the state machine does not allow.
var ErrInvalidTransition = errors.New("invalid state transition")

// Transition is one recorded state change.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Transaction coordinates one multi-step change against the inventory.
// It is created per invocation and must not be shared.
type Transaction struct {
	id        string
	operation string
	state     State
	started   time.Time
	history   []Transition
	recorded  []Step
	failures  []RollbackFailure
	untracked []Step
	log       *RollbackLog

	deleter  netbox.Deleter
	observer Observer
	metrics  *Metrics
	journal  JournalSink
	timeouts *config.Timeouts
	now      func() time.Time
}

// NewTransaction starts a transaction in the validating state.
func NewTransaction(pctx *Context, operation string) *Transaction {
	timeouts := pctx.Timeouts
	if timeouts == nil {
		timeouts = config.LoadTimeouts()
	}
	id := uuid.NewString()
	observer := pctx.Observer
	if observer == nil {
		observer = NewConsoleObserver()
	}
	t := &Transaction{
		id:        id,
		operation: operation,
		state:     StateValidating,
		log:       NewRollbackLog(),
		deleter:   pctx.Inventory,
		observer:  observer.WithFields(map[string]string{"txn": id[:8], "operation": operation}),
		metrics:   pctx.Metrics,
		journal:   pctx.Journal,
		timeouts:  timeouts,
		now:       time.Now,
	}
	t.started = t.now()
	return t
}

// ID returns the transaction identifier.
func (t *Transaction) ID() string { return t.id }

// State returns the current state.
func (t *Transaction) State() State { return t.state }

// Observer returns the observer scoped to this transaction.
func (t *Transaction) Observer() Observer { return t.observer }

// Log returns the rollback log.
func (t *Transaction) Log() *RollbackLog { return t.log }

// History returns the recorded state changes.
func (t *Transaction) History() []Transition {
	out := make([]Transition, len(t.history))
	copy(out, t.history)
	return out
}

// Advance moves the transaction to the given state.
func (t *Transaction) Advance(to State) error {
	for _, allowed := range transitions[t.state] {
		if allowed == to {
			t.history = append(t.history, Transition{From: t.state, To: to, At: t.now()})
			LogStateChange(t.observer, t.state, to)
			t.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.state, to)
}

// Record appends a created object to the rollback log.
func (t *Transaction) Record(step string, ref netbox.ObjectRef) error {
	if t.state != StateCommitting {
		return fmt.Errorf("cannot record %s in state %s", ref, t.state)
	}
	s := Step{Name: step, Object: ref}
	if err := t.log.Append(s); err != nil {
		return err
	}
	t.recorded = append(t.recorded, s)
	return nil
}

// Create runs fn, which creates one remote object, and records the returned reference.
// Errors from fn are wrapped as *RemoteOperationError unless they are already typed.
func (t *Transaction) Create(ctx context.Context, step, resourceType, name string, fn func(context.Context) (netbox.ObjectRef, error)) error {
	if t.state != StateCommitting {
		return fmt.Errorf("step %s: transaction is %s", step, t.state)
	}
	LogResourceCreating(t.observer, step, resourceType, name)
	ref, err := fn(context.WithoutCancel(ctx))
	if err != nil {
		err = wrapStep(step, err)
		LogResourceFailed(t.observer, step, err)
		return err
	}
	if err := t.Record(step, ref); err != nil {
		t.untracked = append(t.untracked, Step{Name: step, Object: ref})
		LogResourceUntracked(t.observer, step, ref.String(), err)
		return &ConsistencyViolationError{Step: step, Message: err.Error()}
	}
	LogResourceCreated(t.observer, step, resourceType, name, ref.ID)
	return nil
}

// Do runs fn as a named step that modifies objects already in the log or checks remote state.
func (t *Transaction) Do(ctx context.Context, step string, fn func(context.Context) error) error {
	if t.state != StateCommitting {
		return fmt.Errorf("step %s: transaction is %s", step, t.state)
	}
	if err := fn(context.WithoutCancel(ctx)); err != nil {
		err = wrapStep(step, err)
		LogResourceFailed(t.observer, step, err)
		return err
	}
	return nil
}

func wrapStep(step string, err error) error {
	if isTyped(err) {
		return err
	}
	return &RemoteOperationError{Step: step, Err: err}
}

// Commit marks the transaction as committed.
func (t *Transaction) Commit() error {
	return t.Advance(StateCommitted)
}

// Fail ends the transaction after cause. Before committing it moves straight
// to failed and returns cause. Once remote objects may exist it rolls back and
// returns a *RolledBackError.
func (t *Transaction) Fail(ctx context.Context, cause error) error {
	switch t.state {
	case StateValidating, StateAllocating:
		if err := t.Advance(StateFailed); err != nil {
			return errors.Join(cause, err)
		}
		return cause
	case StateCommitting, StateCommitted:
		return t.Rollback(ctx, cause)
	default:
		return cause
	}
}

// Discard rolls back a committed transaction on operator request.
func (t *Transaction) Discard(ctx context.Context) error {
	return t.Rollback(ctx, ErrDiscardedByOperator)
}

// Rollback deletes every logged object, newest first. Delete failures are
// collected and never stop the walk. The walk ignores cancellation of ctx and
// is bounded by the rollback timeout instead.
func (t *Transaction) Rollback(ctx context.Context, cause error) error {
	if err := t.Advance(StateRollingBack); err != nil {
		return errors.Join(cause, err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeouts.Rollback)
	defer cancel()

	var failures []RollbackFailure
	for _, s := range t.log.Drain() {
		LogResourceDeleting(t.observer, s.Name, s.Object.Kind, s.Object.Display)
		if err := t.deleteWithRetry(ctx, s.Object); err != nil {
			failures = append(failures, RollbackFailure{Step: s, Err: err})
			LogRollbackFailed(t.observer, s.Name, s.Object.String(), err)
			t.metrics.RecordRollbackStep(s.Object.Kind, "failed")
			continue
		}
		LogResourceDeleted(t.observer, s.Name, s.Object.Kind, s.Object.Display)
		t.metrics.RecordRollbackStep(s.Object.Kind, "deleted")
	}
	t.failures = failures

	if err := t.Advance(StateFailed); err != nil {
		return errors.Join(cause, err)
	}
	return &RolledBackError{Original: cause, Failures: failures}
}

func (t *Transaction) deleteWithRetry(ctx context.Context, ref netbox.ObjectRef) error {
	attempts := t.timeouts.RetryMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return retry.WithExponentialBackoff(ctx, func() error {
		err := t.deleter.Delete(ctx, ref)
		switch {
		case err == nil, netbox.IsNotFound(err):
			return nil
		case netbox.IsRetryable(err):
			return err
		default:
			return retry.Fatal(err)
		}
	},
		retry.WithMaxRetries(attempts-1),
		retry.WithInitialDelay(t.timeouts.RetryInitialDelay),
		retry.WithOnRetry(func(attempt int, err error) {
			t.observer.Printf("delete %s: attempt %d failed, retrying: %v", ref, attempt, err)
		}),
	)
}

// Finish closes the transaction with its final error, records metrics and
// stores the journal. It returns err unchanged. Journal storage failures are
// only logged.
func (t *Transaction) Finish(ctx context.Context, err error) error {
	outcome := OutcomeOf(t.state, err)
	t.metrics.RecordTransaction(t.operation, outcome, t.now().Sub(t.started))

	if t.journal == nil {
		return err
	}
	data, jerr := t.Journal(outcome, err).Marshal()
	if jerr != nil {
		t.observer.Printf("journal: %v", jerr)
		return err
	}
	location, jerr := t.journal.Store(context.WithoutCancel(ctx), t.id, data)
	if jerr != nil {
		t.observer.Printf("journal: archive failed: %v", jerr)
		return err
	}
	t.observer.Printf("journal stored at %s", location)
	return err
}

// OutcomeOf maps the final state and error of a transaction to an outcome label.
func OutcomeOf(state State, err error) string {
	if err == nil {
		if state == StateCommitted {
			return OutcomeCommitted
		}
		return OutcomeDryRun
	}
	var rb *RolledBackError
	if errors.As(err, &rb) {
		switch {
		case !rb.Clean():
			return OutcomeRollbackIncomplete
		case errors.Is(rb.Original, ErrDiscardedByOperator):
			return OutcomeDiscarded
		default:
			return OutcomeRolledBack
		}
	}
	return OutcomeFailed
}
