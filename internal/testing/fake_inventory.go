package testing

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/util/ipnet"
)

// FakeInventory is an in-memory netbox.Inventory.
//
// Records are stored by ID and returned as copies. Errors registered with
// Fail are returned by the named method instead of touching the store.
type FakeInventory struct {
	mu     sync.Mutex
	nextID int

	VMs              map[int]*netbox.VirtualMachine
	Devices          map[int]*netbox.Device
	VMInterfaces     map[int]*netbox.Interface
	DeviceInterfaces map[int]*netbox.Interface
	IPs              map[int]*netbox.IPAddress
	Prefixes         map[int]*netbox.Prefix
	VLANs            map[int]*netbox.VLAN
	Services         map[int]*netbox.Service
	Cables           map[int]*netbox.Cable
	VDCs             map[int]*netbox.VirtualDeviceContext
	Tenants          map[int]*netbox.Tenant
	Sites            map[int]*netbox.Site
	Clusters         map[int]*netbox.Cluster
	Platforms        map[int]*netbox.Platform

	failures map[string][]error
	calls    []string
	deleted  []netbox.ObjectRef
}

// NewFakeInventory returns an empty store.
func NewFakeInventory() *FakeInventory {
	return &FakeInventory{
		nextID:           100,
		VMs:              map[int]*netbox.VirtualMachine{},
		Devices:          map[int]*netbox.Device{},
		VMInterfaces:     map[int]*netbox.Interface{},
		DeviceInterfaces: map[int]*netbox.Interface{},
		IPs:              map[int]*netbox.IPAddress{},
		Prefixes:         map[int]*netbox.Prefix{},
		VLANs:            map[int]*netbox.VLAN{},
		Services:         map[int]*netbox.Service{},
		Cables:           map[int]*netbox.Cable{},
		VDCs:             map[int]*netbox.VirtualDeviceContext{},
		Tenants:          map[int]*netbox.Tenant{},
		Sites:            map[int]*netbox.Site{},
		Clusters:         map[int]*netbox.Cluster{},
		Platforms:        map[int]*netbox.Platform{},
		failures:         map[string][]error{},
	}
}

// Ensure interface compliance
var _ netbox.Inventory = (*FakeInventory)(nil)

// Fail makes the next call of method return err. Several registrations for
// the same method are consumed in order.
func (f *FakeInventory) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = append(f.failures[method], err)
}

// Calls returns the names of all invoked methods in order.
func (f *FakeInventory) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

// Mutations returns the invoked methods that change the store.
func (f *FakeInventory) Mutations() []string {
	var out []string
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, "Create") || strings.HasPrefix(c, "Update") ||
			strings.HasPrefix(c, "Allocate") || c == "Delete" {
			out = append(out, c)
		}
	}
	return out
}

// Deleted returns the references passed to successful Delete calls in order.
func (f *FakeInventory) Deleted() []netbox.ObjectRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]netbox.ObjectRef{}, f.deleted...)
}

// enter records the call and returns an injected failure, if any. It must be called with mu held.
func (f *FakeInventory) enter(method string) error {
	f.calls = append(f.calls, method)
	if errs := f.failures[method]; len(errs) > 0 {
		f.failures[method] = errs[1:]
		return errs[0]
	}
	return nil
}

func (f *FakeInventory) id() int {
	f.nextID++
	return f.nextID
}

func notFound(kind string, id int) error {
	return &netbox.APIError{StatusCode: http.StatusNotFound, Method: http.MethodGet, Path: fmt.Sprintf("/api/%s/%d/", kind, id), Detail: "Not found."}
}

func rejected(kind, field, msg string) error {
	return &netbox.APIError{StatusCode: http.StatusBadRequest, Method: http.MethodPost, Path: "/api/" + kind + "/", Fields: map[string][]string{field: {msg}}}
}

func sortedIDs[T any](m map[int]*T) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func single[T any](matches []T) (*T, error) {
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, netbox.ErrMultipleResults
	}
}

func copyFields(cf netbox.CustomFields) netbox.CustomFields {
	out := netbox.CustomFields{}
	for k, v := range cf {
		out[k] = v
	}
	return out
}

func copyVM(vm *netbox.VirtualMachine) netbox.VirtualMachine {
	c := *vm
	c.CustomFields = copyFields(vm.CustomFields)
	return c
}

func copyDevice(d *netbox.Device) netbox.Device {
	c := *d
	c.CustomFields = copyFields(d.CustomFields)
	return c
}

func copyInterface(i *netbox.Interface) netbox.Interface {
	c := *i
	c.TaggedVLANs = append([]netbox.NestedVLAN(nil), i.TaggedVLANs...)
	c.VDCs = append([]netbox.Ref(nil), i.VDCs...)
	return c
}

func hostOf(address string) string {
	ip, err := ipnet.HostAddress(address)
	if err != nil {
		return address
	}
	return ip.String()
}
