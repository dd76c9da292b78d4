package vm

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/provisioning"
	"github.com/imamik/nbctl/internal/provisioning/allocate"
	"github.com/imamik/nbctl/internal/ui"
	"github.com/imamik/nbctl/internal/util/ipnet"
	"github.com/imamik/nbctl/internal/util/ptr"
)

// Operation is the transaction operation name of a VM create.
const Operation = "create-vm"

// Step names in commit order.
const (
	StepIP           = "ip"
	StepGatewayCheck = "gateway-check"
	StepVM           = "vm"
	StepSlotCheck    = "slot-check"
	StepInterface    = "interface"
	StepAssignIP     = "assign-ip"
	StepPrimaryIP    = "primary-ip"
	StepService      = "service"
)

// Defaults written on created records.
const (
	InterfaceName = "eth0"
	SSHProtocol   = "tcp"
	SSHPort       = 22
)

// DiscardPrompt is asked after a successful commit when a confirmer is set.
const DiscardPrompt = "Roll back everything anyway?"

// Result describes a finished or planned VM create.
type Result struct {
	TransactionID string
	DryRun        bool

	MAC        string
	Identifier string
	Slot       *int
	// Address is the host address, or empty in a dry run that lets the store pick.
	Address string
	Prefix  string

	VM        *netbox.VirtualMachine
	Interface *netbox.Interface
	IP        *netbox.IPAddress
	Service   *netbox.Service
}

// Summary renders the result as key/value pairs.
func (r *Result) Summary(req *ProvisionRequest) []ui.Field {
	address := r.Address
	if address == "" {
		address = "next available in " + r.Prefix
	}
	slot := ""
	if r.Slot != nil {
		slot = strconv.Itoa(*r.Slot)
	}
	fields := []ui.Field{
		{Key: "name", Value: req.Name()},
		{Key: "fqdn", Value: req.FQDN()},
		{Key: "cluster", Value: req.Cluster()},
		{Key: "address", Value: address},
		{Key: "mac", Value: r.MAC},
		{Key: "uuid", Value: r.Identifier},
		{Key: "storage", Value: fmt.Sprintf("%s/%s", req.StorageType(), req.StoragePool())},
		{Key: "storage slot", Value: slot},
		{Key: "transaction", Value: r.TransactionID},
	}
	if r.VM != nil {
		fields = append(fields, ui.Field{Key: "vm id", Value: strconv.Itoa(r.VM.ID)})
	}
	return fields
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithConfirmer asks c whether to discard a committed VM. Without a
// confirmer the run is in batch mode and never prompts.
func WithConfirmer(c ui.Confirmer) Option {
	return func(p *Provisioner) { p.confirmer = c }
}

// WithDryRun stops after allocation without touching the inventory.
func WithDryRun(dryRun bool) Option {
	return func(p *Provisioner) { p.dryRun = dryRun }
}

// Provisioner runs create-vm transactions.
type Provisioner struct {
	confirmer ui.Confirmer
	dryRun    bool
}

// NewProvisioner creates a provisioner.
func NewProvisioner(opts ...Option) *Provisioner {
	p := &Provisioner{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision validates req, allocates its unique values and commits the
// records. On any commit failure the created records are deleted again
// and a *provisioning.RolledBackError is returned.
func (p *Provisioner) Provision(pctx *provisioning.Context, req *ProvisionRequest) (*Result, error) {
	txn := provisioning.NewTransaction(pctx, Operation)
	res := &Result{TransactionID: txn.ID(), DryRun: p.dryRun}

	err := p.run(pctx, txn, req, res)
	if err != nil {
		err = txn.Fail(pctx, err)
	}
	return res, txn.Finish(pctx, err)
}

func (p *Provisioner) run(pctx *provisioning.Context, txn *provisioning.Transaction, req *ProvisionRequest, res *Result) error {
	obs := txn.Observer()
	alloc := pctx.Config.Allocation

	refs, err := Validate(pctx, pctx.Inventory, req, alloc, obs)
	if err != nil {
		return err
	}
	res.Prefix = refs.PrefixNet.String()
	if refs.Address != nil {
		res.Address = refs.PrefixNet.WithLength(refs.Address)
	}

	if err := txn.Advance(provisioning.StateAllocating); err != nil {
		return err
	}
	if err := p.allocate(pctx, txn, req, refs, res); err != nil {
		return err
	}
	if p.dryRun {
		obs.Printf("dry run: %s validated and allocated, nothing written", req.Name())
		return nil
	}

	if err := txn.Advance(provisioning.StateCommitting); err != nil {
		return err
	}
	if err := commit(pctx, txn, req, refs, res); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	if p.confirmer == nil {
		return nil
	}
	discard, err := p.confirmer.Confirm(DiscardPrompt, false)
	if err != nil {
		obs.Printf("confirmation failed, keeping %s: %v", req.Name(), err)
		return nil
	}
	if discard {
		return txn.Discard(pctx)
	}
	return nil
}

func (p *Provisioner) allocate(pctx *provisioning.Context, txn *provisioning.Transaction, req *ProvisionRequest, refs *References, res *Result) error {
	alloc := pctx.Config.Allocation
	obs := txn.Observer()

	if req.MAC() != "" {
		mac, err := allocate.NormalizeMAC(req.MAC())
		if err != nil {
			return err
		}
		res.MAC = mac
	} else {
		mac, err := allocate.MAC(pctx, pctx.Inventory, alloc.MACPrefix, alloc.MACAttempts,
			allocate.ObserveConflicts(obs, pctx.Metrics, allocate.ResourceMAC))
		if err != nil {
			return err
		}
		res.MAC = mac
	}

	if req.Identifier() != "" {
		res.Identifier = allocate.ShortenIdentifier(req.Identifier(), req.ShortIdentifier())
	} else {
		id, err := allocate.Identifier(pctx, pctx.Inventory, req.ShortIdentifier(), alloc.IdentifierAttempts,
			allocate.ObserveConflicts(obs, pctx.Metrics, allocate.ResourceIdentifier))
		if err != nil {
			return err
		}
		res.Identifier = id
	}

	if req.StorageType().UsesSlot() {
		if slot, ok := req.SlotID(); ok {
			res.Slot = &slot
		} else {
			slot, err := allocate.Slot(pctx, pctx.Inventory, refs.Cluster.ID, alloc.SlotMin, alloc.SlotMax)
			if err != nil {
				return err
			}
			res.Slot = &slot
		}
	}
	return nil
}

func commit(pctx *provisioning.Context, txn *provisioning.Transaction, req *ProvisionRequest, refs *References, res *Result) error {
	inv := pctx.Inventory
	var tenantID *int
	if refs.Tenant != nil {
		tenantID = ptr.Int(refs.Tenant.ID)
	}

	if err := txn.Create(pctx, StepIP, "ip address", res.Prefix, func(ctx context.Context) (netbox.ObjectRef, error) {
		body := netbox.IPAddressCreate{DNSName: req.FQDN(), Status: netbox.StatusActive, Tenant: tenantID}
		var ip *netbox.IPAddress
		var err error
		if res.Address != "" {
			body.Address = res.Address
			ip, err = inv.CreateIPAddress(ctx, body)
		} else {
			ip, err = inv.AllocateIP(ctx, refs.Prefix.ID, body)
		}
		if err != nil {
			return netbox.ObjectRef{}, err
		}
		res.IP = ip
		res.Address = ip.Address
		return ip.Ref(), nil
	}); err != nil {
		return err
	}

	if err := txn.Do(pctx, StepGatewayCheck, func(context.Context) error {
		return checkAllocatedAddress(refs.PrefixNet, res.IP.Address)
	}); err != nil {
		return err
	}

	if err := txn.Create(pctx, StepVM, "virtual machine", req.Name(), func(ctx context.Context) (netbox.ObjectRef, error) {
		vm, err := inv.CreateVirtualMachine(ctx, vmCreate(req, refs, res, tenantID))
		if err != nil {
			return netbox.ObjectRef{}, err
		}
		res.VM = vm
		return vm.Ref(), nil
	}); err != nil {
		return err
	}

	if res.Slot != nil {
		if err := txn.Do(pctx, StepSlotCheck, func(ctx context.Context) error {
			return checkSlotHolder(ctx, inv, refs.Cluster.ID, *res.Slot, res.VM.ID)
		}); err != nil {
			return err
		}
	}

	if err := txn.Create(pctx, StepInterface, "interface", req.Name()+":"+InterfaceName, func(ctx context.Context) (netbox.ObjectRef, error) {
		body := netbox.InterfaceCreate{
			VirtualMachine: ptr.Int(res.VM.ID),
			Name:           InterfaceName,
			Type:           "virtual",
			Mode:           "access",
			MACAddress:     res.MAC,
		}
		if refs.Prefix.VLAN != nil {
			body.UntaggedVLAN = ptr.Int(refs.Prefix.VLAN.ID)
		}
		iface, err := inv.CreateVMInterface(ctx, body)
		if err != nil {
			return netbox.ObjectRef{}, err
		}
		res.Interface = iface
		return iface.Ref(), nil
	}); err != nil {
		return err
	}

	if err := txn.Do(pctx, StepAssignIP, func(ctx context.Context) error {
		ip, err := inv.UpdateIPAddress(ctx, res.IP.ID, netbox.IPAddressUpdate{
			AssignedObjectType: ptr.String(netbox.ContentTypeVMInterface),
			AssignedObjectID:   ptr.Int(res.Interface.ID),
		})
		if err != nil {
			return err
		}
		res.IP = ip
		return nil
	}); err != nil {
		return err
	}
	provisioning.LogResourceUpdated(txn.Observer(), StepAssignIP, "ip address", res.IP.Address)

	if err := txn.Do(pctx, StepPrimaryIP, func(ctx context.Context) error {
		vm, err := inv.UpdateVirtualMachine(ctx, res.VM.ID, netbox.VirtualMachineUpdate{PrimaryIP4: ptr.Int(res.IP.ID)})
		if err != nil {
			return err
		}
		res.VM = vm
		return nil
	}); err != nil {
		return err
	}
	provisioning.LogResourceUpdated(txn.Observer(), StepPrimaryIP, "virtual machine", req.Name())

	if req.FQDN() == "" {
		return nil
	}
	return txn.Create(pctx, StepService, "service", req.FQDN(), func(ctx context.Context) (netbox.ObjectRef, error) {
		svc, err := inv.CreateService(ctx, netbox.ServiceCreate{
			Name:           req.FQDN(),
			Protocol:       SSHProtocol,
			Ports:          []int{SSHPort},
			VirtualMachine: ptr.Int(res.VM.ID),
		})
		if err != nil {
			return netbox.ObjectRef{}, err
		}
		res.Service = svc
		return svc.Ref(), nil
	})
}

func vmCreate(req *ProvisionRequest, refs *References, res *Result, tenantID *int) netbox.VirtualMachineCreate {
	cf := StorageFields(req.StorageType(), req.StoragePool(), refs.Devices, res.Slot)
	cf[FieldUUID] = res.Identifier

	body := netbox.VirtualMachineCreate{
		Name:         req.Name(),
		Status:       netbox.StatusPlanned,
		Cluster:      refs.Cluster.ID,
		Tenant:       tenantID,
		VCPUs:        req.CPUs(),
		Memory:       req.MemoryMB(),
		Disk:         req.DiskGB(),
		CustomFields: cf,
	}
	if refs.Site != nil {
		body.Site = ptr.Int(refs.Site.ID)
	}
	if refs.Platform != nil {
		body.Platform = ptr.Int(refs.Platform.ID)
	}
	if req.RoleID() > 0 {
		body.Role = ptr.Int(req.RoleID())
	}
	return body
}

// checkAllocatedAddress fails when the store handed out an address the
// prefix convention reserves.
func checkAllocatedAddress(prefix ipnet.Prefix, address string) error {
	ip, err := ipnet.HostAddress(address)
	if err != nil {
		return &provisioning.ConsistencyViolationError{Step: StepGatewayCheck, Message: err.Error()}
	}
	switch {
	case !prefix.Contains(ip):
		return &provisioning.ConsistencyViolationError{
			Step:    StepGatewayCheck,
			Message: fmt.Sprintf("allocated address %s is outside prefix %s", address, prefix),
		}
	case prefix.IsGateway(ip):
		return &provisioning.ConsistencyViolationError{
			Step:    StepGatewayCheck,
			Message: fmt.Sprintf("allocated address %s is the gateway of %s, check the gateway record of the prefix", address, prefix),
		}
	case prefix.IsReserved(ip):
		return &provisioning.ConsistencyViolationError{
			Step:    StepGatewayCheck,
			Message: fmt.Sprintf("allocated address %s is reserved in %s", address, prefix),
		}
	}
	return nil
}

// checkSlotHolder fails unless vmID is the only VM of the cluster holding slot.
func checkSlotHolder(ctx context.Context, inv netbox.VirtualizationManager, clusterID, slot, vmID int) error {
	holders, err := inv.ListVirtualMachines(ctx, netbox.VirtualMachineFilter{ClusterID: clusterID, StorageID: slot})
	if err != nil {
		return err
	}
	if len(holders) == 1 && holders[0].ID == vmID {
		return nil
	}
	names := make([]string, 0, len(holders))
	for _, h := range holders {
		names = append(names, h.Name)
	}
	return &provisioning.ConsistencyViolationError{
		Step:    StepSlotCheck,
		Message: fmt.Sprintf("storage slot %d is held by %d virtual machine(s) %v, expected only the new one", slot, len(holders), names),
	}
}

// IsDiscarded reports whether err is the result of an operator discarding a committed VM.
func IsDiscarded(err error) bool {
	return errors.Is(err, provisioning.ErrDiscardedByOperator)
}
