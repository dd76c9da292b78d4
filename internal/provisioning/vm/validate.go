package vm

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/imamik/nbctl/internal/config"
	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/provisioning"
	"github.com/imamik/nbctl/internal/provisioning/allocate"
	"github.com/imamik/nbctl/internal/util/ipnet"
)

// Sizing and network bounds of a VM request.
const (
	MinMemoryMB = 51
	MinDiskGB   = 2
	MinCPUs     = 1
	MaxCPUs     = 39
	MinVLAN     = 2
	MaxVLAN     = 4094
)

// References holds the inventory objects a validated request resolved to.
type References struct {
	Tenant    *netbox.Tenant
	Site      *netbox.Site
	Cluster   *netbox.Cluster
	Platform  *netbox.Platform
	Prefix    *netbox.Prefix
	PrefixNet ipnet.Prefix
	Devices   []netbox.Device
	// Address is the requested host address, nil when the store picks one.
	Address net.IP
}

// CheckRequest runs the checks that need no inventory access.
func CheckRequest(req *ProvisionRequest, alloc config.Allocation) []provisioning.ValidationError {
	var out []provisioning.ValidationError
	add := func(ve provisioning.ValidationError) { out = append(out, ve) }

	for _, f := range []struct{ field, value string }{
		{"name", req.Name()},
		{"tenant", req.Tenant()},
		{"site", req.Site()},
		{"cluster", req.Cluster()},
	} {
		if f.value == "" {
			add(provisioning.Errorf(f.field, "is required"))
		}
	}

	if req.MemoryMB() < MinMemoryMB {
		add(provisioning.Errorf("memory", "must be more than %d MB, got %d", MinMemoryMB-1, req.MemoryMB()))
	}
	if req.DiskGB() < MinDiskGB {
		add(provisioning.Errorf("disk", "must be more than %d GB, got %d", MinDiskGB-1, req.DiskGB()))
	}
	if req.CPUs() < MinCPUs || req.CPUs() > MaxCPUs {
		add(provisioning.Errorf("cpus", "must be between %d and %d, got %d", MinCPUs, MaxCPUs, req.CPUs()))
	}

	switch {
	case req.VLANID() == 0 && req.Prefix() == "":
		add(provisioning.Errorf("vlan", "either a VLAN or a prefix is required"))
	case req.VLANID() != 0 && req.Prefix() != "":
		add(provisioning.Errorf("vlan", "VLAN and prefix are mutually exclusive"))
	case req.VLANID() != 0 && (req.VLANID() < MinVLAN || req.VLANID() > MaxVLAN):
		add(provisioning.Errorf("vlan", "must be between %d and %d, got %d", MinVLAN, MaxVLAN, req.VLANID()))
	case req.Prefix() != "":
		if _, err := ipnet.ParsePrefix(req.Prefix()); err != nil {
			add(provisioning.Errorf("prefix", "%v", err))
		}
	}

	out = append(out, checkStorage(req, alloc)...)

	if req.MAC() != "" {
		if _, err := allocate.NormalizeMAC(req.MAC()); err != nil {
			add(provisioning.Errorf("mac", "%v", err))
		}
	}
	if req.Address() != "" {
		if _, err := ipnet.HostAddress(req.Address()); err != nil {
			add(provisioning.Errorf("ip", "%v", err))
		}
	}
	if req.FQDN() == "" {
		add(provisioning.Warnf("fqdn", "not set, no DNS name and no ssh service will be recorded"))
	}
	return out
}

func checkStorage(req *ProvisionRequest, alloc config.Allocation) []provisioning.ValidationError {
	t := req.StorageType()
	if !t.Known() {
		return []provisioning.ValidationError{
			provisioning.Errorf("storage-type", "unknown storage type %q, expected one of %s", t, strings.Join(StorageTypes(), ", ")),
		}
	}

	var out []provisioning.ValidationError
	if n := len(req.StorageDevices()); n != t.Devices() {
		out = append(out, provisioning.Errorf("storage-device", "%s needs exactly %d storage device(s), got %d", t, t.Devices(), n))
	}
	if !t.PoolAllowed(req.StoragePool()) {
		out = append(out, provisioning.Errorf("storage-pool", "pool %q is not valid for %s, expected one of %s", req.StoragePool(), t, strings.Join(t.Pools(), ", ")))
	}
	if slot, ok := req.SlotID(); ok {
		switch {
		case !t.UsesSlot():
			out = append(out, provisioning.Errorf("storage-id", "%s storage does not use a slot", t))
		case slot < alloc.SlotMin || slot > alloc.SlotMax:
			out = append(out, provisioning.Errorf("storage-id", "must be between %d and %d, got %d", alloc.SlotMin, alloc.SlotMax, slot))
		}
	}
	return out
}

// Validate checks req and resolves its references. Pure checks run first;
// if they fail the inventory is not queried. Findings are reported to
// observer and error-level findings are returned as *ValidationFailedError.
// Lookup failures are returned as *RemoteOperationError.
func Validate(ctx context.Context, inv netbox.Inventory, req *ProvisionRequest, alloc config.Allocation, observer provisioning.Observer) (*References, error) {
	if err := provisioning.ReportValidation(observer, CheckRequest(req, alloc)); err != nil {
		return nil, err
	}

	v := &validator{inv: inv, req: req}
	refs, err := v.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if err := provisioning.ReportValidation(observer, v.findings); err != nil {
		return nil, err
	}
	return refs, nil
}

type validator struct {
	inv      netbox.Inventory
	req      *ProvisionRequest
	findings []provisioning.ValidationError
}

func (v *validator) fail(field, format string, args ...interface{}) {
	v.findings = append(v.findings, provisioning.Errorf(field, format, args...))
}

func lookup(step string, err error) error {
	return &provisioning.RemoteOperationError{Step: step, Err: err}
}

func (v *validator) resolve(ctx context.Context) (*References, error) {
	req := v.req
	refs := &References{}

	existing, err := v.inv.GetVirtualMachine(ctx, req.Name())
	if err != nil {
		return nil, lookup("look up virtual machine", err)
	}
	if existing != nil {
		v.fail("name", "virtual machine %q already exists (id %d)", req.Name(), existing.ID)
	}

	if refs.Tenant, err = v.inv.GetTenant(ctx, req.Tenant()); err != nil {
		return nil, lookup("look up tenant", err)
	}
	if refs.Tenant == nil {
		v.fail("tenant", "tenant %q not found", req.Tenant())
	}
	if refs.Site, err = v.inv.GetSite(ctx, req.Site()); err != nil {
		return nil, lookup("look up site", err)
	}
	if refs.Site == nil {
		v.fail("site", "site %q not found", req.Site())
	}
	if refs.Cluster, err = v.inv.GetCluster(ctx, req.Cluster()); err != nil {
		return nil, lookup("look up cluster", err)
	}
	if refs.Cluster == nil {
		v.fail("cluster", "cluster %q not found", req.Cluster())
	}
	if req.Platform() != "" {
		if refs.Platform, err = v.inv.GetPlatform(ctx, req.Platform()); err != nil {
			return nil, lookup("look up platform", err)
		}
		if refs.Platform == nil {
			v.fail("platform", "platform %q not found", req.Platform())
		}
	}

	if err := v.resolvePrefix(ctx, refs); err != nil {
		return nil, err
	}
	if err := v.resolveDevices(ctx, refs); err != nil {
		return nil, err
	}
	if err := v.checkUnique(ctx, refs); err != nil {
		return nil, err
	}
	if err := v.checkAddress(ctx, refs); err != nil {
		return nil, err
	}
	return refs, nil
}

func (v *validator) resolvePrefix(ctx context.Context, refs *References) error {
	filter := netbox.PrefixFilter{Prefix: v.req.Prefix(), VLANVID: v.req.VLANID()}
	prefixes, err := v.inv.ListPrefixes(ctx, filter)
	if err != nil {
		return lookup("look up prefix", err)
	}

	// VIDs are only unique per site; narrow down when the site has its own.
	if v.req.VLANID() != 0 && len(prefixes) > 1 && refs.Site != nil {
		var scoped []netbox.Prefix
		for _, p := range prefixes {
			if p.Site != nil && p.Site.ID == refs.Site.ID {
				scoped = append(scoped, p)
			}
		}
		if len(scoped) > 0 {
			prefixes = scoped
		}
	}

	what := fmt.Sprintf("VLAN %d", v.req.VLANID())
	field := "vlan"
	if v.req.Prefix() != "" {
		what, field = "prefix "+v.req.Prefix(), "prefix"
	}
	switch len(prefixes) {
	case 0:
		v.fail(field, "no prefix found for %s", what)
		return nil
	case 1:
	default:
		v.fail(field, "%d prefixes found for %s, expected one", len(prefixes), what)
		return nil
	}

	p := prefixes[0]
	if p.VLAN == nil {
		v.fail(field, "prefix %s has no VLAN", p.Prefix)
	}
	parsed, err := ipnet.ParsePrefix(p.Prefix)
	if err != nil {
		v.fail(field, "prefix %s: %v", p.Prefix, err)
		return nil
	}
	refs.Prefix = &p
	refs.PrefixNet = parsed
	return nil
}

func (v *validator) resolveDevices(ctx context.Context, refs *References) error {
	role := v.req.StorageType().DeviceRole()
	for _, name := range v.req.StorageDevices() {
		d, err := v.inv.GetDevice(ctx, netbox.DeviceFilter{Name: name})
		if err != nil {
			return lookup("look up storage device", err)
		}
		if d == nil {
			v.fail("storage-device", "device %q not found", name)
			continue
		}
		if d.RoleName() != role {
			v.fail("storage-device", "device %q has role %q, %s storage needs %q", name, d.RoleName(), v.req.StorageType(), role)
			continue
		}
		refs.Devices = append(refs.Devices, *d)
	}
	if len(refs.Devices) == 2 && refs.Devices[0].ID == refs.Devices[1].ID {
		v.fail("storage-device", "replicated storage needs two different devices")
	}
	return nil
}

func (v *validator) checkUnique(ctx context.Context, refs *References) error {
	if slot, ok := v.req.SlotID(); ok && v.req.StorageType().UsesSlot() && refs.Cluster != nil {
		holders, err := v.inv.ListVirtualMachines(ctx, netbox.VirtualMachineFilter{ClusterID: refs.Cluster.ID, StorageID: slot})
		if err != nil {
			return lookup("check storage slot", err)
		}
		if len(holders) > 0 {
			v.fail("storage-id", "slot %d is already used by %s in cluster %s", slot, holders[0].Name, refs.Cluster.Name)
		}
	}

	if mac := v.req.MAC(); mac != "" {
		used, err := allocate.MACInUse(ctx, v.inv, mac)
		if err != nil {
			return lookup("check MAC address", err)
		}
		if used {
			v.fail("mac", "MAC address %s is already in use", mac)
		}
	}

	if id := v.req.Identifier(); id != "" {
		used, err := allocate.IdentifierInUse(ctx, v.inv, id, v.req.ShortIdentifier())
		if err != nil {
			return lookup("check identifier", err)
		}
		if used {
			v.fail("uuid", "identifier %s is already in use", id)
		}
	}
	return nil
}

func (v *validator) checkAddress(ctx context.Context, refs *References) error {
	if v.req.Address() == "" || refs.Prefix == nil {
		return nil
	}
	ip, err := ipnet.HostAddress(v.req.Address())
	if err != nil {
		v.fail("ip", "%v", err)
		return nil
	}
	p := refs.PrefixNet
	switch {
	case !p.Contains(ip):
		v.fail("ip", "%s is outside prefix %s", ip, p)
		return nil
	case p.IsReserved(ip):
		v.fail("ip", "%s is the network, broadcast or gateway address of %s", ip, p)
		return nil
	}

	taken, err := v.inv.ListIPAddresses(ctx, netbox.IPAddressFilter{Address: ip.String()})
	if err != nil {
		return lookup("check address", err)
	}
	if len(taken) > 0 {
		v.fail("ip", "%s is not available in %s (recorded as id %d)", ip, p, taken[0].ID)
		return nil
	}
	refs.Address = ip
	return nil
}
