package testing

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockJournalSink is a mock implementation of provisioning.JournalSink.
type MockJournalSink struct {
	mock.Mock
}

// Store records the call and returns the configured location.
func (m *MockJournalSink) Store(ctx context.Context, id string, data []byte) (string, error) {
	args := m.Called(ctx, id, data)
	return args.String(0), args.Error(1)
}

// MockConfirmer is a mock implementation of ui.Confirmer.
type MockConfirmer struct {
	mock.Mock
}

// Confirm records the question and returns the configured answer.
func (m *MockConfirmer) Confirm(title string, defaultYes bool) (bool, error) {
	args := m.Called(title, defaultYes)
	return args.Bool(0), args.Error(1)
}
