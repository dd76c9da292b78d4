package netbox

import (
	"context"
	"fmt"
	"net/http"

	nb "github.com/netbox-community/go-netbox/v4"
)

// ListPrefixes returns prefixes matching the filter.
func (c *RealClient) ListPrefixes(ctx context.Context, f PrefixFilter) ([]Prefix, error) {
	return list[Prefix](ctx, c, KindPrefix, func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		r := c.api.IpamAPI.IpamPrefixesList(ctx).Limit(limit).Offset(offset)
		if f.Prefix != "" {
			r = r.Prefix([]string{f.Prefix})
		}
		if f.VLANVID != 0 {
			r = r.VlanVid(int32(f.VLANVID))
		}
		if f.VLANID != 0 {
			id := int32(f.VLANID)
			r = r.VlanId([]*int32{&id})
		}
		if f.SiteID != 0 {
			r = r.SiteId([]int32{int32(f.SiteID)})
		}
		return drop(r.Execute())
	})
}

// UpdatePrefix applies a partial update to a prefix.
func (c *RealClient) UpdatePrefix(ctx context.Context, id int, req PrefixUpdate) (*Prefix, error) {
	body, err := convert[nb.PatchedWritablePrefixRequest](req)
	if err != nil {
		return nil, err
	}
	return object[Prefix](ctx, c, http.MethodPatch, apiPath(KindPrefix, id), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.IpamAPI.IpamPrefixesPartialUpdate(ctx, int32(id)).PatchedWritablePrefixRequest(body).Execute())
	})
}

// AllocateIP creates an address record for the next free address of a prefix.
// The generated request model requires an address, so this call is sent
// without it on the raw path and the server picks the address.
func (c *RealClient) AllocateIP(ctx context.Context, prefixID int, req IPAddressCreate) (*IPAddress, error) {
	req.Address = ""
	path := apiPath(KindPrefix, prefixID) + "available-ips/"
	return object[IPAddress](ctx, c, http.MethodPost, path, c.raw(http.MethodPost, path, nil, req))
}

// CreateIPAddress creates an address record with an explicit address.
func (c *RealClient) CreateIPAddress(ctx context.Context, req IPAddressCreate) (*IPAddress, error) {
	if req.Address == "" {
		return nil, fmt.Errorf("ip address create needs an address")
	}
	body, err := convert[nb.WritableIPAddressRequest](req)
	if err != nil {
		return nil, err
	}
	return object[IPAddress](ctx, c, http.MethodPost, apiPath(KindIPAddress), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.IpamAPI.IpamIpAddressesCreate(ctx).WritableIPAddressRequest(body).Execute())
	})
}

// GetIPAddress returns the address with the given ID.
func (c *RealClient) GetIPAddress(ctx context.Context, id int) (*IPAddress, error) {
	return object[IPAddress](ctx, c, http.MethodGet, apiPath(KindIPAddress, id), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.IpamAPI.IpamIpAddressesRetrieve(ctx, int32(id)).Execute())
	})
}

// ListIPAddresses returns addresses matching the filter.
func (c *RealClient) ListIPAddresses(ctx context.Context, f IPAddressFilter) ([]IPAddress, error) {
	return list[IPAddress](ctx, c, KindIPAddress, func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		r := c.api.IpamAPI.IpamIpAddressesList(ctx).Limit(limit).Offset(offset)
		if f.Address != "" {
			r = r.Address([]string{f.Address})
		}
		if f.DNSName != "" {
			r = r.DnsName([]string{f.DNSName})
		}
		if f.InterfaceID != 0 {
			r = r.InterfaceId([]int32{int32(f.InterfaceID)})
		}
		if f.VMInterfaceID != 0 {
			r = r.VminterfaceId([]int32{int32(f.VMInterfaceID)})
		}
		return drop(r.Execute())
	})
}

// UpdateIPAddress applies a partial update to an address.
func (c *RealClient) UpdateIPAddress(ctx context.Context, id int, req IPAddressUpdate) (*IPAddress, error) {
	body, err := convert[nb.PatchedWritableIPAddressRequest](req)
	if err != nil {
		return nil, err
	}
	return object[IPAddress](ctx, c, http.MethodPatch, apiPath(KindIPAddress, id), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.IpamAPI.IpamIpAddressesPartialUpdate(ctx, int32(id)).PatchedWritableIPAddressRequest(body).Execute())
	})
}

// ListVLANs returns VLANs matching the filter.
func (c *RealClient) ListVLANs(ctx context.Context, f VLANFilter) ([]VLAN, error) {
	return list[VLAN](ctx, c, KindVLAN, func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		r := c.api.IpamAPI.IpamVlansList(ctx).Limit(limit).Offset(offset)
		if f.VID != 0 {
			r = r.Vid([]int32{int32(f.VID)})
		}
		if f.Site != "" {
			r = r.Site([]string{f.Site})
		}
		return drop(r.Execute())
	})
}

// ListServices returns services matching the filter.
func (c *RealClient) ListServices(ctx context.Context, f ServiceFilter) ([]Service, error) {
	services, err := list[Service](ctx, c, KindService, func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		r := c.api.IpamAPI.IpamServicesList(ctx).Limit(limit).Offset(offset)
		if f.Name != "" {
			r = r.Name([]string{f.Name})
		}
		if f.Protocol != "" {
			r = r.Protocol(nb.IpamServiceTemplatesListProtocolParameter(f.Protocol))
		}
		if f.Port != 0 {
			r = r.Port(float32(f.Port))
		}
		return drop(r.Execute())
	})
	if err != nil {
		return nil, err
	}
	for i := range services {
		services[i].normalize()
	}
	return services, nil
}

// serviceCreate is the service body with the owner as a parent object.
type serviceCreate struct {
	ParentObjectType string `json:"parent_object_type"`
	ParentObjectID   int    `json:"parent_object_id"`
	Name             string `json:"name"`
	Protocol         string `json:"protocol"`
	Ports            []int  `json:"ports"`
}

// CreateService creates a service on a VM or device.
func (c *RealClient) CreateService(ctx context.Context, req ServiceCreate) (*Service, error) {
	wire := serviceCreate{Name: req.Name, Protocol: req.Protocol, Ports: req.Ports}
	switch {
	case req.VirtualMachine != nil:
		wire.ParentObjectType, wire.ParentObjectID = ContentTypeVirtualMachine, *req.VirtualMachine
	case req.Device != nil:
		wire.ParentObjectType, wire.ParentObjectID = ContentTypeDevice, *req.Device
	default:
		return nil, fmt.Errorf("service %q has no virtual machine or device", req.Name)
	}
	body, err := convert[nb.WritableServiceRequest](wire)
	if err != nil {
		return nil, err
	}
	svc, err := object[Service](ctx, c, http.MethodPost, apiPath(KindService), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.IpamAPI.IpamServicesCreate(ctx).WritableServiceRequest(body).Execute())
	})
	if err != nil {
		return nil, err
	}
	svc.normalize()
	return svc, nil
}
