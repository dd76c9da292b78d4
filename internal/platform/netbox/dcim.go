package netbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	nb "github.com/netbox-community/go-netbox/v4"
)

// GetDevice returns the matching device, or nil if none exists.
func (c *RealClient) GetDevice(ctx context.Context, f DeviceFilter) (*Device, error) {
	return getOne[Device](ctx, c, KindDevice, "name="+f.Name, func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		r := c.api.DcimAPI.DcimDevicesList(ctx).Limit(limit).Offset(offset)
		if f.Name != "" {
			r = r.Name([]string{f.Name})
		}
		if f.Site != "" {
			r = r.Site([]string{f.Site})
		}
		return drop(r.Execute())
	})
}

// UpdateDevice applies a partial update to a device.
func (c *RealClient) UpdateDevice(ctx context.Context, id int, req DeviceUpdate) (*Device, error) {
	body, err := convert[nb.PatchedWritableDeviceWithConfigContextRequest](req)
	if err != nil {
		return nil, err
	}
	return object[Device](ctx, c, http.MethodPatch, apiPath(KindDevice, id), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.DcimAPI.DcimDevicesPartialUpdate(ctx, int32(id)).
			PatchedWritableDeviceWithConfigContextRequest(body).Execute())
	})
}

// GetSite returns the site with the given name, or nil if none exists.
func (c *RealClient) GetSite(ctx context.Context, name string) (*Site, error) {
	return getOne[Site](ctx, c, KindSite, "name="+name, func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		return drop(c.api.DcimAPI.DcimSitesList(ctx).Name([]string{name}).Limit(limit).Offset(offset).Execute())
	})
}

// GetPlatform returns the platform with the given slug, or nil if none exists.
func (c *RealClient) GetPlatform(ctx context.Context, slug string) (*Platform, error) {
	return getOne[Platform](ctx, c, KindPlatform, "slug="+slug, func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		return drop(c.api.DcimAPI.DcimPlatformsList(ctx).Slug([]string{slug}).Limit(limit).Offset(offset).Execute())
	})
}

// ListDeviceInterfaces returns device interfaces matching the filter.
func (c *RealClient) ListDeviceInterfaces(ctx context.Context, f InterfaceFilter) ([]Interface, error) {
	return list[Interface](ctx, c, KindDeviceInterface, func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		r := c.api.DcimAPI.DcimInterfacesList(ctx).Limit(limit).Offset(offset)
		if f.ParentID != 0 {
			r = r.DeviceId([]int32{int32(f.ParentID)})
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

// CreateDeviceInterface creates an interface on a device. A requested MAC
// address is created as its own object and made the interface's primary MAC.
func (c *RealClient) CreateDeviceInterface(ctx context.Context, req InterfaceCreate) (*Interface, error) {
	if req.Device == nil {
		return nil, fmt.Errorf("device interface %q has no device", req.Name)
	}
	if req.Type == "" {
		req.Type = "virtual"
	}
	mac := req.MACAddress
	req.MACAddress = ""
	body, err := convert[nb.WritableInterfaceRequest](req)
	if err != nil {
		return nil, err
	}
	iface, err := object[Interface](ctx, c, http.MethodPost, apiPath(KindDeviceInterface), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.DcimAPI.DcimInterfacesCreate(ctx).WritableInterfaceRequest(body).Execute())
	})
	if err != nil || mac == "" {
		return iface, err
	}
	return c.attachMAC(ctx, iface, mac, func(ctx context.Context, patch primaryMAC) (*Interface, error) {
		return c.patchDeviceInterface(ctx, iface.ID, patch)
	})
}

// UpdateDeviceInterface applies a partial update to a device interface.
func (c *RealClient) UpdateDeviceInterface(ctx context.Context, id int, req InterfaceUpdate) (*Interface, error) {
	return c.patchDeviceInterface(ctx, id, req)
}

func (c *RealClient) patchDeviceInterface(ctx context.Context, id int, req any) (*Interface, error) {
	body, err := convert[nb.PatchedWritableInterfaceRequest](req)
	if err != nil {
		return nil, err
	}
	return object[Interface](ctx, c, http.MethodPatch, apiPath(KindDeviceInterface, id), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.DcimAPI.DcimInterfacesPartialUpdate(ctx, int32(id)).PatchedWritableInterfaceRequest(body).Execute())
	})
}

// primaryMAC is the interface update that selects its primary MAC object.
type primaryMAC struct {
	PrimaryMACAddress int `json:"primary_mac_address"`
}

type macAddressCreate struct {
	MACAddress         string `json:"mac_address"`
	AssignedObjectType string `json:"assigned_object_type"`
	AssignedObjectID   int    `json:"assigned_object_id"`
}

// attachMAC creates a MAC address object on iface and makes it the primary MAC.
// When either step fails the interface is deleted, which also removes the MAC object.
func (c *RealClient) attachMAC(ctx context.Context, iface *Interface, mac string, setPrimary func(context.Context, primaryMAC) (*Interface, error)) (*Interface, error) {
	updated, err := c.createPrimaryMAC(ctx, iface, mac, setPrimary)
	if err == nil {
		return updated, nil
	}
	if derr := c.Delete(context.WithoutCancel(ctx), iface.Ref()); derr != nil && !IsNotFound(derr) {
		err = errors.Join(err, fmt.Errorf("failed to remove interface %s: %w", iface.Ref(), derr))
	}
	return nil, err
}

func (c *RealClient) createPrimaryMAC(ctx context.Context, iface *Interface, mac string, setPrimary func(context.Context, primaryMAC) (*Interface, error)) (*Interface, error) {
	body, err := convert[nb.MACAddressRequest](macAddressCreate{
		MACAddress:         mac,
		AssignedObjectType: iface.ContentType(),
		AssignedObjectID:   iface.ID,
	})
	if err != nil {
		return nil, err
	}
	created, err := object[MACAddress](ctx, c, http.MethodPost, apiPath(KindMACAddress), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.DcimAPI.DcimMacAddressesCreate(ctx).MACAddressRequest(body).Execute())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MAC address %s: %w", mac, err)
	}
	updated, err := setPrimary(ctx, primaryMAC{PrimaryMACAddress: created.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to set primary MAC of %s: %w", iface.Ref(), err)
	}
	return updated, nil
}

// ListVirtualDeviceContexts returns the VDCs of a device, or every VDC when deviceID is zero.
func (c *RealClient) ListVirtualDeviceContexts(ctx context.Context, deviceID int) ([]VirtualDeviceContext, error) {
	return list[VirtualDeviceContext](ctx, c, KindVDC, func(ctx context.Context, limit, offset int32) (*http.Response, error) {
		r := c.api.DcimAPI.DcimVirtualDeviceContextsList(ctx).Limit(limit).Offset(offset)
		if deviceID != 0 {
			r = r.DeviceId([]int32{int32(deviceID)})
		}
		return drop(r.Execute())
	})
}

// CreateCable connects two terminations.
func (c *RealClient) CreateCable(ctx context.Context, req CableCreate) (*Cable, error) {
	if len(req.ATerminations) == 0 || len(req.BTerminations) == 0 {
		return nil, fmt.Errorf("cable needs both an A and a B termination")
	}
	body, err := convert[nb.WritableCableRequest](req)
	if err != nil {
		return nil, err
	}
	return object[Cable](ctx, c, http.MethodPost, apiPath(KindCable), func(ctx context.Context) (*http.Response, error) {
		return drop(c.api.DcimAPI.DcimCablesCreate(ctx).WritableCableRequest(body).Execute())
	})
}
