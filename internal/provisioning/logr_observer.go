package provisioning

import (
	"fmt"

	"github.com/go-logr/logr"
)

// LogrObserver implements Observer on top of a logr.Logger.
type LogrObserver struct {
	logger        logr.Logger
	contextFields map[string]string
}

// NewLogrObserver creates an observer that writes structured records to logger.
func NewLogrObserver(logger logr.Logger) *LogrObserver {
	return &LogrObserver{logger: logger, contextFields: map[string]string{}}
}

// Printf implements Observer.
func (o *LogrObserver) Printf(format string, v ...interface{}) {
	o.logger.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (o *LogrObserver) Event(event Event) {
	event = mergeFields(event, o.contextFields)

	kv := []interface{}{"event", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	for k, v := range event.Fields {
		kv = append(kv, k, v)
	}

	switch event.Type {
	case EventResourceFailed, EventResourceUntracked, EventRollbackFailed, EventValidationError:
		o.logger.Error(nil, event.Message, kv...)
	case EventAllocationConflict:
		o.logger.V(1).Info(event.Message, kv...)
	default:
		o.logger.Info(event.Message, kv...)
	}
}

// WithFields implements Observer.
func (o *LogrObserver) WithFields(fields map[string]string) Observer {
	return &LogrObserver{
		logger:        o.logger,
		contextFields: joinFields(o.contextFields, fields),
	}
}
