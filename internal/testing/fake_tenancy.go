package testing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/imamik/nbctl/internal/platform/netbox"
)

// GetTenant implements netbox.TenancyManager.
func (f *FakeInventory) GetTenant(_ context.Context, name string) (*netbox.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetTenant"); err != nil {
		return nil, err
	}
	var out []netbox.Tenant
	for _, id := range sortedIDs(f.Tenants) {
		if t := f.Tenants[id]; t.Name == name {
			out = append(out, *t)
		}
	}
	return single(out)
}

// Delete implements netbox.Deleter. Deleting a VM or device removes its
// interfaces and services and unassigns their addresses.
func (f *FakeInventory) Delete(_ context.Context, ref netbox.ObjectRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Delete"); err != nil {
		return err
	}
	if !f.remove(ref) {
		return &netbox.APIError{StatusCode: http.StatusNotFound, Method: http.MethodDelete, Path: fmt.Sprintf("/api/%s/%d/", ref.Kind, ref.ID), Detail: "Not found."}
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *FakeInventory) remove(ref netbox.ObjectRef) bool {
	switch ref.Kind {
	case netbox.KindVirtualMachine:
		if _, ok := f.VMs[ref.ID]; !ok {
			return false
		}
		delete(f.VMs, ref.ID)
		for id, i := range f.VMInterfaces {
			if i.VirtualMachine != nil && i.VirtualMachine.ID == ref.ID {
				f.unassign(netbox.ContentTypeVMInterface, id)
				delete(f.VMInterfaces, id)
			}
		}
		for id, s := range f.Services {
			if s.VirtualMachine != nil && s.VirtualMachine.ID == ref.ID {
				delete(f.Services, id)
			}
		}
		return true
	case netbox.KindDevice:
		if _, ok := f.Devices[ref.ID]; !ok {
			return false
		}
		delete(f.Devices, ref.ID)
		for id, i := range f.DeviceInterfaces {
			if i.Device != nil && i.Device.ID == ref.ID {
				f.unassign(netbox.ContentTypeDeviceInterface, id)
				delete(f.DeviceInterfaces, id)
			}
		}
		for id, s := range f.Services {
			if s.Device != nil && s.Device.ID == ref.ID {
				delete(f.Services, id)
			}
		}
		return true
	case netbox.KindVMInterface:
		return removeKey(f.VMInterfaces, ref.ID, func() { f.unassign(netbox.ContentTypeVMInterface, ref.ID) })
	case netbox.KindDeviceInterface:
		return removeKey(f.DeviceInterfaces, ref.ID, func() { f.unassign(netbox.ContentTypeDeviceInterface, ref.ID) })
	case netbox.KindIPAddress:
		if _, ok := f.IPs[ref.ID]; !ok {
			return false
		}
		delete(f.IPs, ref.ID)
		for _, vm := range f.VMs {
			if vm.PrimaryIP4 != nil && vm.PrimaryIP4.ID == ref.ID {
				vm.PrimaryIP4 = nil
			}
		}
		return true
	case netbox.KindService:
		return removeKey(f.Services, ref.ID, nil)
	case netbox.KindCable:
		return removeKey(f.Cables, ref.ID, nil)
	case netbox.KindPrefix:
		return removeKey(f.Prefixes, ref.ID, nil)
	case netbox.KindVLAN:
		return removeKey(f.VLANs, ref.ID, nil)
	}
	return false
}

func removeKey[T any](m map[int]*T, id int, after func()) bool {
	if _, ok := m[id]; !ok {
		return false
	}
	delete(m, id)
	if after != nil {
		after()
	}
	return true
}

func (f *FakeInventory) unassign(contentType string, ifaceID int) {
	for _, ip := range f.IPs {
		if ip.AssignedObjectType == contentType && ip.AssignedObjectID != nil && *ip.AssignedObjectID == ifaceID {
			ip.AssignedObjectType = ""
			ip.AssignedObjectID = nil
			ip.AssignedObject = nil
		}
	}
}
