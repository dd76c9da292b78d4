package netbox

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	nb "github.com/netbox-community/go-netbox/v4"
)

// GetVirtualMachine returns the VM with the given name, or nil if none exists.
func (c *RealClient) GetVirtualMachine(ctx context.Context, name string) (*VirtualMachine, error) {
	return getOne[VirtualMachine](ctx, c, KindVirtualMachine, "name="+name, c.vmPager(VirtualMachineFilter{Name: name}))
}

// GetVirtualMachineByID returns the VM with the given ID.
func (c *RealClient) GetVirtualMachineByID(ctx context.Context, id int) (*VirtualMachine, error) {
	return object[VirtualMachine](ctx, c, http.MethodGet, apiPath(KindVirtualMachine, id), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.VirtualizationAPI.VirtualizationVirtualMachinesRetrieve(ctx, int32(id)).Execute())
	})
}

// ListVirtualMachines returns every VM matching the filter.
func (c *RealClient) ListVirtualMachines(ctx context.Context, f VirtualMachineFilter) ([]VirtualMachine, error) {
	return list[VirtualMachine](ctx, c, KindVirtualMachine, c.vmPager(f))
}

// vmPager lists VMs through the generated client unless the filter needs
// custom field lookups, which it has no parameters for.
func (c *RealClient) vmPager(f VirtualMachineFilter) pager {
	if f.UUID != "" || f.UUIDPrefix != "" || f.StorageID != 0 {
		return c.rawPager(KindVirtualMachine, vmQuery(f))
	}
	return func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		r := c.api.VirtualizationAPI.VirtualizationVirtualMachinesList(ctx).Limit(limit).Offset(offset)
		if f.Name != "" {
			r = r.Name([]string{f.Name})
		}
		if f.ClusterID != 0 {
			id := int32(f.ClusterID)
			r = r.ClusterId([]*int32{&id})
		}
		if f.Status != "" {
			r = r.Status([]string{f.Status})
		}
		return drop(r.Execute())
	}
}

func vmQuery(f VirtualMachineFilter) url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("name", f.Name)
	if f.ClusterID != 0 {
		q.Set("cluster_id", strconv.Itoa(f.ClusterID))
	}
	set("status", f.Status)
	set("cf_uuid", f.UUID)
	set("cf_uuid__isw", f.UUIDPrefix)
	if f.StorageID != 0 {
		q.Set("cf_storage_id", strconv.Itoa(f.StorageID))
	}
	return q
}

// CreateVirtualMachine creates a VM record.
func (c *RealClient) CreateVirtualMachine(ctx context.Context, req VirtualMachineCreate) (*VirtualMachine, error) {
	if req.Name == "" || req.Cluster == 0 {
		return nil, fmt.Errorf("virtual machine name and cluster are required")
	}
	body, err := convert[nb.WritableVirtualMachineWithConfigContextRequest](req)
	if err != nil {
		return nil, err
	}
	return object[VirtualMachine](ctx, c, http.MethodPost, apiPath(KindVirtualMachine), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.VirtualizationAPI.VirtualizationVirtualMachinesCreate(ctx).
			WritableVirtualMachineWithConfigContextRequest(body).Execute())
	})
}

// UpdateVirtualMachine applies a partial update to a VM.
func (c *RealClient) UpdateVirtualMachine(ctx context.Context, id int, req VirtualMachineUpdate) (*VirtualMachine, error) {
	body, err := convert[nb.PatchedWritableVirtualMachineWithConfigContextRequest](req)
	if err != nil {
		return nil, err
	}
	return object[VirtualMachine](ctx, c, http.MethodPatch, apiPath(KindVirtualMachine, id), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.VirtualizationAPI.VirtualizationVirtualMachinesPartialUpdate(ctx, int32(id)).
			PatchedWritableVirtualMachineWithConfigContextRequest(body).Execute())
	})
}

// GetCluster returns the cluster with the given name, or nil if none exists.
func (c *RealClient) GetCluster(ctx context.Context, name string) (*Cluster, error) {
	return getOne[Cluster](ctx, c, KindCluster, "name="+name, func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		return drop(c.api.VirtualizationAPI.VirtualizationClustersList(ctx).Name([]string{name}).Limit(limit).Offset(offset).Execute())
	})
}

// ListVMInterfaces returns VM interfaces matching the filter.
func (c *RealClient) ListVMInterfaces(ctx context.Context, f InterfaceFilter) ([]Interface, error) {
	return list[Interface](ctx, c, KindVMInterface, func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		r := c.api.VirtualizationAPI.VirtualizationInterfacesList(ctx).Limit(limit).Offset(offset)
		if f.ParentID != 0 {
			r = r.VirtualMachineId([]int32{int32(f.ParentID)})
		}
		if f.Name != "" {
			r = r.Name([]string{f.Name})
		}
		if f.MACAddress != "" {
			r = r.MacAddress([]string{f.MACAddress})
		}
		return drop(r.Execute())
	})
}

// CreateVMInterface creates an interface on a VM. A requested MAC address is
// created as its own object and made the interface's primary MAC.
func (c *RealClient) CreateVMInterface(ctx context.Context, req InterfaceCreate) (*Interface, error) {
	if req.VirtualMachine == nil {
		return nil, fmt.Errorf("vm interface %q has no virtual machine", req.Name)
	}
	mac := req.MACAddress
	// VM interfaces have no type field.
	req.Type = ""
	req.MACAddress = ""
	body, err := convert[nb.WritableVMInterfaceRequest](req)
	if err != nil {
		return nil, err
	}
	iface, err := object[Interface](ctx, c, http.MethodPost, apiPath(KindVMInterface), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.VirtualizationAPI.VirtualizationInterfacesCreate(ctx).WritableVMInterfaceRequest(body).Execute())
	})
	if err != nil || mac == "" {
		return iface, err
	}
	return c.attachMAC(ctx, iface, mac, func(ctx context.Context, patch primaryMAC) (*Interface, error) {
		body, err := convert[nb.PatchedWritableVMInterfaceRequest](patch)
		if err != nil {
			return nil, err
		}
		return object[Interface](ctx, c, http.MethodPatch, apiPath(KindVMInterface, iface.ID), func(ctx context.Context) (*http.Response, error) {
			return drop(c.api.VirtualizationAPI.VirtualizationInterfacesPartialUpdate(ctx, int32(iface.ID)).
				PatchedWritableVMInterfaceRequest(body).Execute())
		})
	})
}
