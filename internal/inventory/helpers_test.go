package inventory

import (
	"sync"
	"testing"

	"github.com/imamik/nbctl/internal/provisioning"
	nbtesting "github.com/imamik/nbctl/internal/testing"
)

// warnings collects validation warnings.
type warnings struct {
	mu   sync.Mutex
	msgs []string
}

func (w *warnings) Printf(string, ...interface{}) {}

func (w *warnings) Event(e provisioning.Event) {
	if e.Type != provisioning.EventValidationWarning {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, e.Message)
}

func (w *warnings) WithFields(map[string]string) provisioning.Observer { return w }

func (w *warnings) all() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string{}, w.msgs...)
}

func newManager(t *testing.T) (*Manager, *nbtesting.Standard, *warnings) {
	t.Helper()
	fx := nbtesting.NewStandard()
	w := &warnings{}
	return New(fx.Inventory, w), fx, w
}
