package inventory

import (
	"context"
	"fmt"

	"github.com/imamik/nbctl/internal/platform/netbox"
)

// SSH service used to map an FQDN to its host.
const (
	sshProtocol = "tcp"
	sshPort     = 22
)

// FindDevice resolves fqdn to the name of the VM or device behind it. The
// ssh service named fqdn is tried first, then addresses with that DNS name.
// With uuid set the VM's uuid custom field is returned instead; devices
// have no uuid.
func (m *Manager) FindDevice(ctx context.Context, fqdn string, uuid bool) (string, error) {
	services, err := m.inv.ListServices(ctx, netbox.ServiceFilter{Name: fqdn, Protocol: sshProtocol, Port: sshPort})
	if err != nil {
		return "", fmt.Errorf("failed to list services: %w", err)
	}
	switch {
	case len(services) > 1:
		return "", fmt.Errorf("%w: %d ssh services named %s", ErrAmbiguous, len(services), fqdn)
	case len(services) == 1:
		s := services[0]
		switch {
		case s.VirtualMachine != nil:
			return m.vmName(ctx, s.VirtualMachine, uuid)
		case s.Device != nil:
			return deviceName(s.Device, uuid)
		}
		return "", fmt.Errorf("service %s (id %d) has no parent", s.Name, s.ID)
	}

	ips, err := m.inv.ListIPAddresses(ctx, netbox.IPAddressFilter{DNSName: fqdn})
	if err != nil {
		return "", fmt.Errorf("failed to list addresses: %w", err)
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("%w: nothing is named %s", ErrNotFound, fqdn)
	}
	ip := ips[0]
	if ip.AssignedObject == nil {
		return "", fmt.Errorf("address %s named %s is not assigned", ip.Address, fqdn)
	}
	switch {
	case ip.AssignedObject.VirtualMachine != nil:
		return m.vmName(ctx, ip.AssignedObject.VirtualMachine, uuid)
	case ip.AssignedObject.Device != nil:
		return deviceName(ip.AssignedObject.Device, uuid)
	}
	return "", fmt.Errorf("address %s named %s has no parent", ip.Address, fqdn)
}

func (m *Manager) vmName(ctx context.Context, ref *netbox.Ref, uuid bool) (string, error) {
	if !uuid {
		return ref.Name, nil
	}
	vm, err := m.inv.GetVirtualMachineByID(ctx, ref.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load virtual machine %s: %w", ref.Name, err)
	}
	if vm == nil {
		return "", fmt.Errorf("%w: virtual machine %d", ErrNotFound, ref.ID)
	}
	id := vm.CustomFields.String("uuid")
	if id == "" {
		return "", fmt.Errorf("virtual machine %s has no uuid", vm.Name)
	}
	return id, nil
}

func deviceName(ref *netbox.Ref, uuid bool) (string, error) {
	if uuid {
		return "", fmt.Errorf("%s is a device, devices have no uuid", ref.Name)
	}
	return ref.Name, nil
}

// DefaultVMStatus is the status list-vms filters on by default.
const DefaultVMStatus = netbox.StatusActive

// ListOptions filters ListVMs.
type ListOptions struct {
	Status  string
	Cluster string
	// UUID prints "vm-<uuid>" instead of the name.
	UUID bool
}

// ListVMs returns the names, or vm-prefixed identifiers, of matching VMs.
func (m *Manager) ListVMs(ctx context.Context, opts ListOptions) ([]string, error) {
	if opts.Status == "" {
		opts.Status = DefaultVMStatus
	}
	filter := netbox.VirtualMachineFilter{Status: opts.Status}
	if opts.Cluster != "" {
		cluster, err := m.inv.GetCluster(ctx, opts.Cluster)
		if err != nil {
			return nil, fmt.Errorf("failed to look up cluster %s: %w", opts.Cluster, err)
		}
		if cluster == nil {
			return nil, fmt.Errorf("%w: cluster %s", ErrNotFound, opts.Cluster)
		}
		filter.ClusterID = cluster.ID
	}

	vms, err := m.inv.ListVirtualMachines(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list virtual machines: %w", err)
	}
	out := make([]string, 0, len(vms))
	for _, vm := range vms {
		if opts.UUID {
			out = append(out, "vm-"+vm.CustomFields.String("uuid"))
			continue
		}
		out = append(out, vm.Name)
	}
	return out, nil
}
