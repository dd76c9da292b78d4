package nic

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/provisioning"
	"github.com/imamik/nbctl/internal/provisioning/allocate"
	"github.com/imamik/nbctl/internal/util/ipnet"
	"github.com/imamik/nbctl/internal/util/ptr"
)

// Operation is the transaction operation name of an interface add.
const Operation = "add-interface"

// Step names in commit order.
const (
	StepInterface = "interface"
	StepIP        = "ip"
)

// Request describes the interface to add.
type Request struct {
	// Target is the name of the VM or device, usually its FQDN.
	Target    string
	Interface string
	// VLAN is the VID of the untagged VLAN, zero for none.
	VLAN int
	// HostOffset selects the n-th host of the VLAN prefix, zero for no address.
	HostOffset int
	MAC        string
}

// Result describes the created records.
type Result struct {
	TransactionID string
	Interface     *netbox.Interface
	IP            *netbox.IPAddress
	MAC           string
}

// plan is a validated request with its resolved references.
type plan struct {
	vm      *netbox.VirtualMachine
	device  *netbox.Device
	vlan    *netbox.VLAN
	prefix  ipnet.Prefix
	address net.IP
	// mac is the normalized requested MAC, empty for bridges.
	mac string
}

func (p *plan) siteSlug() string {
	switch {
	case p.vm != nil && p.vm.Site != nil:
		return p.vm.Site.Slug
	case p.device != nil && p.device.Site != nil:
		return p.device.Site.Slug
	}
	return ""
}

// Bridges carry no MAC address of their own.
func isBridge(name string) bool {
	return strings.HasPrefix(name, "br")
}

// Add creates the interface described by req.
func Add(pctx *provisioning.Context, req Request) (*Result, error) {
	txn := provisioning.NewTransaction(pctx, Operation)
	res := &Result{TransactionID: txn.ID()}

	err := run(pctx, txn, normalize(req), res)
	if err != nil {
		err = txn.Fail(pctx, err)
	}
	return res, txn.Finish(pctx, err)
}

func normalize(req Request) Request {
	req.Target = strings.TrimSuffix(strings.TrimSpace(req.Target), ".")
	req.Interface = strings.TrimSpace(req.Interface)
	req.MAC = strings.ToLower(strings.TrimSpace(req.MAC))
	return req
}

func run(pctx *provisioning.Context, txn *provisioning.Transaction, req Request, res *Result) error {
	obs := txn.Observer()
	p, err := validate(pctx, pctx.Inventory, req, obs)
	if err != nil {
		return err
	}

	if err := txn.Advance(provisioning.StateAllocating); err != nil {
		return err
	}
	if !isBridge(req.Interface) {
		if p.mac != "" {
			res.MAC = p.mac
		} else {
			alloc := pctx.Config.Allocation
			mac, err := allocate.MAC(pctx, pctx.Inventory, alloc.MACPrefix, alloc.MACAttempts,
				allocate.ObserveConflicts(obs, pctx.Metrics, allocate.ResourceMAC))
			if err != nil {
				return err
			}
			res.MAC = mac
		}
	}

	if err := txn.Advance(provisioning.StateCommitting); err != nil {
		return err
	}
	if err := commit(pctx, txn, req, p, res); err != nil {
		return err
	}
	return txn.Commit()
}

func commit(pctx *provisioning.Context, txn *provisioning.Transaction, req Request, p *plan, res *Result) error {
	inv := pctx.Inventory

	if err := txn.Create(pctx, StepInterface, "interface", req.Target+":"+req.Interface, func(ctx context.Context) (netbox.ObjectRef, error) {
		body := netbox.InterfaceCreate{
			Name:       req.Interface,
			Type:       "virtual",
			Mode:       "access",
			MACAddress: res.MAC,
		}
		if p.vlan != nil {
			body.UntaggedVLAN = ptr.Int(p.vlan.ID)
			body.Description = p.vlan.Name
		}
		var iface *netbox.Interface
		var err error
		if p.vm != nil {
			body.VirtualMachine = ptr.Int(p.vm.ID)
			iface, err = inv.CreateVMInterface(ctx, body)
		} else {
			body.Device = ptr.Int(p.device.ID)
			iface, err = inv.CreateDeviceInterface(ctx, body)
		}
		if err != nil {
			return netbox.ObjectRef{}, err
		}
		res.Interface = iface
		return iface.Ref(), nil
	}); err != nil {
		return err
	}

	if p.address == nil {
		return nil
	}
	address := p.prefix.WithLength(p.address)
	return txn.Create(pctx, StepIP, "ip address", address, func(ctx context.Context) (netbox.ObjectRef, error) {
		ip, err := inv.CreateIPAddress(ctx, netbox.IPAddressCreate{
			Address:            address,
			DNSName:            req.Target,
			Status:             netbox.StatusActive,
			AssignedObjectType: res.Interface.ContentType(),
			AssignedObjectID:   ptr.Int(res.Interface.ID),
		})
		if err != nil {
			return netbox.ObjectRef{}, err
		}
		res.IP = ip
		return ip.Ref(), nil
	})
}

func validate(ctx context.Context, inv netbox.Inventory, req Request, obs provisioning.Observer) (*plan, error) {
	var findings []provisioning.ValidationError
	fail := func(field, format string, args ...interface{}) {
		findings = append(findings, provisioning.Errorf(field, format, args...))
	}

	if req.Target == "" {
		fail("target", "is required")
	}
	if req.Interface == "" {
		fail("interface", "is required")
	}
	if req.VLAN != 0 && (req.VLAN < 2 || req.VLAN > 4094) {
		fail("vlan", "must be between 2 and 4094, got %d", req.VLAN)
	}
	if req.HostOffset < 0 {
		fail("ip", "host offset must be positive, got %d", req.HostOffset)
	}
	if req.HostOffset > 0 && req.VLAN == 0 {
		fail("ip", "a host offset needs a VLAN")
	}
	var mac string
	if req.MAC != "" {
		normalized, err := allocate.NormalizeMAC(req.MAC)
		if err != nil {
			fail("mac", "%v", err)
		}
		if isBridge(req.Interface) {
			findings = append(findings, provisioning.Warnf("mac", "bridge interface %s gets no MAC address, ignoring %s", req.Interface, req.MAC))
		} else {
			mac = normalized
		}
	}
	if err := provisioning.ReportValidation(obs, findings); err != nil {
		return nil, err
	}
	findings = nil

	p := &plan{mac: mac}
	var err error
	if p.vm, err = inv.GetVirtualMachine(ctx, req.Target); err != nil {
		return nil, &provisioning.RemoteOperationError{Step: "look up virtual machine", Err: err}
	}
	if p.device, err = inv.GetDevice(ctx, netbox.DeviceFilter{Name: req.Target}); err != nil {
		return nil, &provisioning.RemoteOperationError{Step: "look up device", Err: err}
	}
	switch {
	case p.vm == nil && p.device == nil:
		fail("target", "no VM or device named %q", req.Target)
		return nil, provisioning.ReportValidation(obs, findings)
	case p.vm != nil && p.device != nil:
		fail("target", "both a VM and a device are named %q", req.Target)
		return nil, provisioning.ReportValidation(obs, findings)
	}

	filter := netbox.InterfaceFilter{Name: req.Interface}
	var existing []netbox.Interface
	if p.vm != nil {
		filter.ParentID = p.vm.ID
		existing, err = inv.ListVMInterfaces(ctx, filter)
	} else {
		filter.ParentID = p.device.ID
		existing, err = inv.ListDeviceInterfaces(ctx, filter)
	}
	if err != nil {
		return nil, &provisioning.RemoteOperationError{Step: "look up interface", Err: err}
	}
	if len(existing) > 0 {
		fail("interface", "%s already has an interface %s", req.Target, req.Interface)
	}

	if p.mac != "" {
		used, err := allocate.MACInUse(ctx, inv, p.mac)
		if err != nil {
			return nil, &provisioning.RemoteOperationError{Step: "check MAC address", Err: err}
		}
		if used {
			fail("mac", "MAC address %s is already in use", p.mac)
		}
	}

	if req.VLAN != 0 {
		if err := resolveNetwork(ctx, inv, req, p, fail); err != nil {
			return nil, err
		}
	}
	if err := provisioning.ReportValidation(obs, findings); err != nil {
		return nil, err
	}
	return p, nil
}

func resolveNetwork(ctx context.Context, inv netbox.Inventory, req Request, p *plan, fail func(string, string, ...interface{})) error {
	vlans, err := inv.ListVLANs(ctx, netbox.VLANFilter{VID: req.VLAN, Site: p.siteSlug()})
	if err != nil {
		return &provisioning.RemoteOperationError{Step: "look up VLAN", Err: err}
	}
	if len(vlans) == 0 && p.siteSlug() != "" {
		// Global VLANs have no site.
		if vlans, err = inv.ListVLANs(ctx, netbox.VLANFilter{VID: req.VLAN}); err != nil {
			return &provisioning.RemoteOperationError{Step: "look up VLAN", Err: err}
		}
	}
	switch len(vlans) {
	case 0:
		fail("vlan", "VLAN %d not found", req.VLAN)
		return nil
	case 1:
		p.vlan = &vlans[0]
	default:
		fail("vlan", "%d VLANs with VID %d found, expected one", len(vlans), req.VLAN)
		return nil
	}

	if req.HostOffset == 0 {
		return nil
	}
	prefixes, err := inv.ListPrefixes(ctx, netbox.PrefixFilter{VLANID: p.vlan.ID})
	if err != nil {
		return &provisioning.RemoteOperationError{Step: "look up prefix", Err: err}
	}
	if len(prefixes) != 1 {
		fail("vlan", "VLAN %d has %d prefixes, expected one", req.VLAN, len(prefixes))
		return nil
	}
	if p.prefix, err = ipnet.ParsePrefix(prefixes[0].Prefix); err != nil {
		fail("vlan", "prefix %s: %v", prefixes[0].Prefix, err)
		return nil
	}

	host, err := p.prefix.Host(req.HostOffset)
	if err != nil {
		fail("ip", "%v", err)
		return nil
	}
	if p.vm != nil && p.prefix.IsGateway(host) {
		fail("ip", "%s is the gateway of %s", host, p.prefix)
		return nil
	}
	taken, err := inv.ListIPAddresses(ctx, netbox.IPAddressFilter{Address: host.String()})
	if err != nil {
		return &provisioning.RemoteOperationError{Step: "check address", Err: err}
	}
	if len(taken) > 0 {
		fail("ip", "%s is already recorded (id %d)", host, taken[0].ID)
		return nil
	}
	p.address = host
	return nil
}

// String renders the result for the terminal.
func (r *Result) String() string {
	var b strings.Builder
	if r.Interface != nil {
		fmt.Fprintf(&b, "interface %s:%s (id %d)", r.Interface.ParentName(), r.Interface.Name, r.Interface.ID)
	}
	if r.IP != nil {
		fmt.Fprintf(&b, " address %s", r.IP.Address)
	}
	return b.String()
}
