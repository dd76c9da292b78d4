package provisioning

import (
	"context"
	"time"

	"github.com/imamik/nbctl/internal/config"
	"github.com/imamik/nbctl/internal/platform/netbox"
)

// MockObserver is a test implementation of Observer that records events.
// Observers derived through WithFields share the same record.
type MockObserver struct {
	rec    *observerRecord
	fields map[string]string
}

type observerRecord struct {
	events   []Event
	messages []string
}

func NewMockObserver() *MockObserver {
	return &MockObserver{rec: &observerRecord{}, fields: map[string]string{}}
}

func (m *MockObserver) Printf(format string, v ...interface{}) {
	m.rec.messages = append(m.rec.messages, format)
}

func (m *MockObserver) Event(event Event) {
	m.rec.events = append(m.rec.events, mergeFields(event, m.fields))
}

func (m *MockObserver) WithFields(fields map[string]string) Observer {
	return &MockObserver{rec: m.rec, fields: joinFields(m.fields, fields)}
}

func (m *MockObserver) Events() []Event { return m.rec.events }

func (m *MockObserver) EventsOfType(eventType EventType) []Event {
	var out []Event
	for _, e := range m.rec.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func testTimeouts() *config.Timeouts {
	return &config.Timeouts{
		Request:           time.Second,
		Rollback:          5 * time.Second,
		RetryMaxAttempts:  3,
		RetryInitialDelay: time.Millisecond,
	}
}

func newTestContext(inv netbox.Inventory) (*Context, *MockObserver) {
	obs := NewMockObserver()
	return &Context{
		Context:   context.Background(),
		Config:    config.Default(),
		Inventory: inv,
		Observer:  obs,
		Timeouts:  testTimeouts(),
	}, obs
}

type recordingSink struct {
	id   string
	data []byte
	err  error
}

func (s *recordingSink) Store(_ context.Context, id string, data []byte) (string, error) {
	s.id = id
	s.data = data
	if s.err != nil {
		return "", s.err
	}
	return "s3://bucket/" + id + ".json", nil
}
