package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/provisioning"
)

// Sentinel errors of the inventory tasks.
var (
	ErrNotFound  = errors.New("not found")
	ErrAmbiguous = errors.New("ambiguous name")
	ErrExists    = errors.New("already exists")
)

// Manager runs inventory tasks against one store.
type Manager struct {
	inv      netbox.Inventory
	observer provisioning.Observer
}

// New creates a manager. Warnings are reported to observer.
func New(inv netbox.Inventory, observer provisioning.Observer) *Manager {
	if observer == nil {
		observer = provisioning.NewConsoleObserver()
	}
	return &Manager{inv: inv, observer: observer}
}

func (m *Manager) warn(field, format string, args ...interface{}) {
	provisioning.LogValidation(m.observer, provisioning.Warnf(field, format, args...))
}

// Host is a VM or a device, whichever owns a name.
type Host struct {
	VM     *netbox.VirtualMachine
	Device *netbox.Device
}

// Name returns the host name.
func (h *Host) Name() string {
	if h.VM != nil {
		return h.VM.Name
	}
	return h.Device.Name
}

// IsVM reports whether the host is a virtual machine.
func (h *Host) IsVM() bool { return h.VM != nil }

// CustomFields returns the custom fields of the host.
func (h *Host) CustomFields() netbox.CustomFields {
	if h.VM != nil {
		return h.VM.CustomFields
	}
	return h.Device.CustomFields
}

// ResolveHost finds the VM or device called name. A name held by both is an error.
func (m *Manager) ResolveHost(ctx context.Context, name string) (*Host, error) {
	vm, err := m.inv.GetVirtualMachine(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up virtual machine %s: %w", name, err)
	}
	dev, err := m.inv.GetDevice(ctx, netbox.DeviceFilter{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to look up device %s: %w", name, err)
	}
	switch {
	case vm != nil && dev != nil:
		return nil, fmt.Errorf("%w: both a VM and a device are named %s", ErrAmbiguous, name)
	case vm != nil:
		return &Host{VM: vm}, nil
	case dev != nil:
		return &Host{Device: dev}, nil
	}
	return nil, fmt.Errorf("%w: no VM or device named %s", ErrNotFound, name)
}

// Interface returns the interface called name on h.
func (m *Manager) Interface(ctx context.Context, h *Host, name string) (*netbox.Interface, error) {
	var ifaces []netbox.Interface
	var err error
	if h.IsVM() {
		ifaces, err = m.inv.ListVMInterfaces(ctx, netbox.InterfaceFilter{ParentID: h.VM.ID, Name: name})
	} else {
		ifaces, err = m.inv.ListDeviceInterfaces(ctx, netbox.InterfaceFilter{ParentID: h.Device.ID, Name: name})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces of %s: %w", h.Name(), err)
	}
	if len(ifaces) == 0 {
		return nil, fmt.Errorf("%w: interface %s on %s", ErrNotFound, name, h.Name())
	}
	return &ifaces[0], nil
}

func (m *Manager) device(ctx context.Context, filter netbox.DeviceFilter) (*netbox.Device, error) {
	dev, err := m.inv.GetDevice(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to look up device %s: %w", filter.Name, err)
	}
	if dev == nil {
		if filter.Site != "" {
			return nil, fmt.Errorf("%w: no device %s at site %s", ErrNotFound, filter.Name, filter.Site)
		}
		return nil, fmt.Errorf("%w: no device %s", ErrNotFound, filter.Name)
	}
	return dev, nil
}

// updateCustomFields writes fields to the VM or device.
func (m *Manager) updateCustomFields(ctx context.Context, h *Host, fields netbox.CustomFields) error {
	var err error
	if h.IsVM() {
		_, err = m.inv.UpdateVirtualMachine(ctx, h.VM.ID, netbox.VirtualMachineUpdate{CustomFields: fields})
	} else {
		_, err = m.inv.UpdateDevice(ctx, h.Device.ID, netbox.DeviceUpdate{CustomFields: fields})
	}
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", h.Name(), err)
	}
	return nil
}
