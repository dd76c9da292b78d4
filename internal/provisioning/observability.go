package provisioning

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	// Printf logs a free-form message.
	Printf(format string, v ...interface{})

	// Event emits a structured event
	Event(event Event)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Transaction state or step name
	Message   string            // Human-readable message
	Resource  string            // Resource name/ID if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventStateChanged indicates the transaction moved to another state.
	EventStateChanged EventType = "txn.state"

	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created successfully.
	EventResourceCreated EventType = "resource.created"
	// EventResourceUpdated indicates an existing resource was modified.
	EventResourceUpdated EventType = "resource.updated"
	// EventResourceFailed indicates a step against a resource failed.
	EventResourceFailed EventType = "resource.failed"
	// EventResourceDeleting indicates a resource is being deleted.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource was deleted successfully.
	EventResourceDeleted EventType = "resource.deleted"
	// EventResourceUntracked indicates a created resource could not be added to the rollback log.
	EventResourceUntracked EventType = "resource.untracked"

	// EventRollbackFailed indicates a compensating delete did not succeed.
	EventRollbackFailed EventType = "rollback.failed"

	// EventAllocationConflict indicates a generated candidate was already taken.
	EventAllocationConflict EventType = "allocation.conflict"

	// EventValidationWarning indicates a validation warning.
	EventValidationWarning EventType = "validation.warning"
	// EventValidationError indicates a validation error.
	EventValidationError EventType = "validation.error"
)

// ConsoleObserver implements Observer using standard log package.
type ConsoleObserver struct {
	contextFields map[string]string
}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{
		contextFields: make(map[string]string),
	}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	event = mergeFields(event, o.contextFields)
	log.Print(formatEvent(event))
}

// WithFields implements Observer interface.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	return &ConsoleObserver{
		contextFields: joinFields(o.contextFields, fields),
	}
}

func joinFields(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// mergeFields fills the timestamp and adds context fields the event does not set itself.
func mergeFields(event Event, contextFields map[string]string) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Fields == nil {
		event.Fields = make(map[string]string, len(contextFields))
	}
	for k, v := range contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}
	return event
}

// formatEvent formats an event for console output.
func formatEvent(event Event) string {
	var parts []string

	// Event type indicator
	parts = append(parts, string(event.Type))

	if event.Phase != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Phase))
	}

	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}

	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		keys := make([]string, 0, len(event.Fields))
		for k := range event.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fieldParts := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, event.Fields[k]))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}

	return strings.Join(parts, " ")
}

// Helper functions for common events

// LogStateChange logs a transaction state transition.
func LogStateChange(observer Observer, from, to State) {
	observer.Event(Event{
		Type:    EventStateChanged,
		Phase:   string(to),
		Message: fmt.Sprintf("%s -> %s", from, to),
	})
}

// LogResourceCreating logs a resource creation start event.
func LogResourceCreating(observer Observer, step, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    step,
		Resource: resourceName,
		Message:  fmt.Sprintf("creating %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceCreated logs a successful resource creation event.
func LogResourceCreated(observer Observer, step, resourceType, resourceName string, resourceID int) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    step,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s created", resourceType),
		Fields: map[string]string{
			"type": resourceType,
			"id":   fmt.Sprint(resourceID),
		},
	})
}

// LogResourceUpdated logs a modification of an existing resource.
func LogResourceUpdated(observer Observer, step, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceUpdated,
		Phase:    step,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s updated", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceFailed logs a failed step.
func LogResourceFailed(observer Observer, step string, err error) {
	observer.Event(Event{
		Type:    EventResourceFailed,
		Phase:   step,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogResourceDeleting logs a resource deletion start event.
func LogResourceDeleting(observer Observer, step, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleting,
		Phase:    step,
		Resource: resourceName,
		Message:  fmt.Sprintf("deleting %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceDeleted logs a successful resource deletion event.
func LogResourceDeleted(observer Observer, step, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleted,
		Phase:    step,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s deleted", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceUntracked logs a created object that rollback will not remove.
func LogResourceUntracked(observer Observer, step, resourceName string, err error) {
	observer.Event(Event{
		Type:     EventResourceUntracked,
		Phase:    step,
		Resource: resourceName,
		Message:  fmt.Sprintf("created but not tracked for rollback, remove manually if unused: %v", err),
	})
}

// LogRollbackFailed logs a compensating delete that could not be completed.
func LogRollbackFailed(observer Observer, step, resourceName string, err error) {
	observer.Event(Event{
		Type:     EventRollbackFailed,
		Phase:    step,
		Resource: resourceName,
		Message:  fmt.Sprintf("rollback failed, remove manually: %v", err),
	})
}

// LogAllocationConflict logs a rejected allocation candidate.
func LogAllocationConflict(observer Observer, resource, candidate string, attempt int) {
	observer.Event(Event{
		Type:     EventAllocationConflict,
		Phase:    string(StateAllocating),
		Resource: resource,
		Message:  fmt.Sprintf("%s already in use", candidate),
		Fields: map[string]string{
			"attempt": fmt.Sprint(attempt),
		},
	})
}

// LogValidation logs a validation finding at its severity.
func LogValidation(observer Observer, ve ValidationError) {
	eventType := EventValidationError
	if !ve.IsError() {
		eventType = EventValidationWarning
	}
	observer.Event(Event{
		Type:     eventType,
		Phase:    string(StateValidating),
		Resource: ve.Field,
		Message:  ve.Message,
	})
}
