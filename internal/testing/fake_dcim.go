package testing

import (
	"context"

	"github.com/imamik/nbctl/internal/platform/netbox"
)

// GetDevice implements netbox.DCIMManager.
func (f *FakeInventory) GetDevice(_ context.Context, filter netbox.DeviceFilter) (*netbox.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetDevice"); err != nil {
		return nil, err
	}
	var out []netbox.Device
	for _, id := range sortedIDs(f.Devices) {
		d := f.Devices[id]
		if filter.Name != "" && d.Name != filter.Name {
			continue
		}
		if filter.Site != "" && (d.Site == nil || d.Site.Slug != filter.Site) {
			continue
		}
		out = append(out, copyDevice(d))
	}
	return single(out)
}

// UpdateDevice implements netbox.DCIMManager.
func (f *FakeInventory) UpdateDevice(_ context.Context, id int, req netbox.DeviceUpdate) (*netbox.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateDevice"); err != nil {
		return nil, err
	}
	d, ok := f.Devices[id]
	if !ok {
		return nil, notFound(netbox.KindDevice, id)
	}
	if d.CustomFields == nil {
		d.CustomFields = netbox.CustomFields{}
	}
	for k, v := range req.CustomFields {
		d.CustomFields[k] = v
	}
	c := copyDevice(d)
	return &c, nil
}

// GetSite implements netbox.DCIMManager.
func (f *FakeInventory) GetSite(_ context.Context, name string) (*netbox.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetSite"); err != nil {
		return nil, err
	}
	var out []netbox.Site
	for _, id := range sortedIDs(f.Sites) {
		if s := f.Sites[id]; s.Name == name {
			out = append(out, *s)
		}
	}
	return single(out)
}

// GetPlatform implements netbox.DCIMManager.
func (f *FakeInventory) GetPlatform(_ context.Context, slugName string) (*netbox.Platform, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetPlatform"); err != nil {
		return nil, err
	}
	var out []netbox.Platform
	for _, id := range sortedIDs(f.Platforms) {
		if p := f.Platforms[id]; p.Slug == slugName {
			out = append(out, *p)
		}
	}
	return single(out)
}

// ListDeviceInterfaces implements netbox.DCIMManager.
func (f *FakeInventory) ListDeviceInterfaces(_ context.Context, filter netbox.InterfaceFilter) ([]netbox.Interface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListDeviceInterfaces"); err != nil {
		return nil, err
	}
	return filterInterfaces(f.DeviceInterfaces, filter), nil
}

// CreateDeviceInterface implements netbox.DCIMManager.
func (f *FakeInventory) CreateDeviceInterface(_ context.Context, req netbox.InterfaceCreate) (*netbox.Interface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateDeviceInterface"); err != nil {
		return nil, err
	}
	if req.Device == nil {
		return nil, rejected(netbox.KindDeviceInterface, "device", "This field is required.")
	}
	d, ok := f.Devices[*req.Device]
	if !ok {
		return nil, rejected(netbox.KindDeviceInterface, "device", "Related object not found.")
	}
	i := f.newInterface(req)
	i.Device = &netbox.Ref{ID: d.ID, Name: d.Name}
	f.DeviceInterfaces[i.ID] = i
	c := copyInterface(i)
	return &c, nil
}

// UpdateDeviceInterface implements netbox.DCIMManager.
func (f *FakeInventory) UpdateDeviceInterface(_ context.Context, id int, req netbox.InterfaceUpdate) (*netbox.Interface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateDeviceInterface"); err != nil {
		return nil, err
	}
	i, ok := f.DeviceInterfaces[id]
	if !ok {
		return nil, notFound(netbox.KindDeviceInterface, id)
	}
	if req.Mode != nil {
		i.Mode = &netbox.Choice{Value: *req.Mode}
	}
	if req.Description != nil {
		i.Description = *req.Description
	}
	if req.TaggedVLANs != nil {
		i.TaggedVLANs = nil
		for _, vid := range *req.TaggedVLANs {
			v, ok := f.VLANs[vid]
			if !ok {
				return nil, rejected(netbox.KindDeviceInterface, "tagged_vlans", "Related object not found.")
			}
			i.TaggedVLANs = append(i.TaggedVLANs, netbox.NestedVLAN{ID: v.ID, VID: v.VID, Name: v.Name})
		}
	}
	if req.VDCs != nil {
		i.VDCs = nil
		for _, vdcID := range *req.VDCs {
			v, ok := f.VDCs[vdcID]
			if !ok {
				return nil, rejected(netbox.KindDeviceInterface, "vdcs", "Related object not found.")
			}
			i.VDCs = append(i.VDCs, netbox.Ref{ID: v.ID, Name: v.Name})
		}
	}
	c := copyInterface(i)
	return &c, nil
}

// ListVirtualDeviceContexts implements netbox.DCIMManager.
func (f *FakeInventory) ListVirtualDeviceContexts(_ context.Context, deviceID int) ([]netbox.VirtualDeviceContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListVirtualDeviceContexts"); err != nil {
		return nil, err
	}
	var out []netbox.VirtualDeviceContext
	for _, id := range sortedIDs(f.VDCs) {
		v := f.VDCs[id]
		if deviceID != 0 && (v.Device == nil || v.Device.ID != deviceID) {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

// CreateCable implements netbox.DCIMManager.
func (f *FakeInventory) CreateCable(_ context.Context, req netbox.CableCreate) (*netbox.Cable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateCable"); err != nil {
		return nil, err
	}
	for _, t := range append(append([]netbox.Termination{}, req.ATerminations...), req.BTerminations...) {
		if f.cabled(t) {
			return nil, rejected(netbox.KindCable, "a_terminations", "Interface is already cabled.")
		}
	}
	c := &netbox.Cable{
		ID:            f.id(),
		Type:          req.Type,
		Label:         req.Label,
		Color:         req.Color,
		Length:        req.Length,
		ATerminations: append([]netbox.Termination{}, req.ATerminations...),
		BTerminations: append([]netbox.Termination{}, req.BTerminations...),
	}
	if req.LengthUnit != "" {
		c.LengthUnit = &netbox.Choice{Value: req.LengthUnit}
	}
	f.Cables[c.ID] = c
	out := *c
	return &out, nil
}

func (f *FakeInventory) cabled(t netbox.Termination) bool {
	for _, c := range f.Cables {
		for _, existing := range append(append([]netbox.Termination{}, c.ATerminations...), c.BTerminations...) {
			if existing == t {
				return true
			}
		}
	}
	return false
}
