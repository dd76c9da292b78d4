package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/nbctl/internal/inventory"
	"github.com/imamik/nbctl/internal/ui"
)

// AddCable handles the add-cable command.
func AddCable(ctx context.Context, opts Options, req inventory.CableRequest) error {
	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	cable, err := s.manager().AddCable(ctx, req)
	if err != nil {
		return fmt.Errorf("add-cable failed: %w", err)
	}
	fmt.Fprint(stdout, ui.Success(fmt.Sprintf("cable %d %s:%s <-> %s:%s", cable.ID, req.HostA, req.PortA, req.HostB, req.PortB)))
	return nil
}

// AddService handles the add-service command.
func AddService(ctx context.Context, opts Options, host, name, protoPort string) error {
	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	svc, err := s.manager().AddService(ctx, host, name, protoPort)
	if err != nil {
		return fmt.Errorf("add-service failed: %w", err)
	}
	fmt.Fprint(stdout, ui.Success(fmt.Sprintf("service %s %s on %s (id %d)", svc.Name, protoPort, host, svc.ID)))
	return nil
}

// FindDevice handles the find-device command. The result is printed bare
// so scripts can capture it.
func FindDevice(ctx context.Context, opts Options, fqdn string, uuid bool) error {
	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	name, err := s.manager().FindDevice(ctx, fqdn, uuid)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, name)
	return nil
}

// ListVMs handles the list-vms command, one VM per line.
func ListVMs(ctx context.Context, opts Options, list inventory.ListOptions) error {
	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	names, err := s.manager().ListVMs(ctx, list)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(stdout, n)
	}
	return nil
}

// MarkUpgraded handles the mark-upgraded command.
func MarkUpgraded(ctx context.Context, opts Options, host string, upgrade inventory.UpgradeOptions) error {
	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	changes, err := s.manager().MarkUpgraded(ctx, host, upgrade)
	if err != nil {
		return fmt.Errorf("mark-upgraded failed: %w", err)
	}
	fmt.Fprint(stdout, ui.Changes(changes, upgrade.DryRun))
	return nil
}

// UpdateVMStorage handles the update-vm-storage command. The slot range
// comes from the allocation settings.
func UpdateVMStorage(ctx context.Context, opts Options, req inventory.StorageUpdate) error {
	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	req.SlotMin = s.cfg.Allocation.SlotMin
	req.SlotMax = s.cfg.Allocation.SlotMax
	changes, err := s.manager().UpdateVMStorage(ctx, req)
	if err != nil {
		return fmt.Errorf("update-vm-storage failed: %w", err)
	}
	fmt.Fprint(stdout, ui.Changes(changes, false))
	return nil
}

// SetInterfaceVLANs handles the set-interface-vlans command.
func SetInterfaceVLANs(ctx context.Context, opts Options, site, device, iface, vlans string) error {
	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	if site == "" {
		site = s.cfg.DefaultSite
	}
	updated, err := s.manager().SetInterfaceVLANs(ctx, site, device, iface, vlans)
	if err != nil {
		return fmt.Errorf("set-interface-vlans failed: %w", err)
	}
	fmt.Fprint(stdout, ui.Success(fmt.Sprintf("%s:%s tagged with %d VLAN(s)", device, iface, len(updated.TaggedVLANs))))
	return nil
}

// SetInterfaceVDC handles the set-interface-vdc command.
func SetInterfaceVDC(ctx context.Context, opts Options, device, iface, vdc string) error {
	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	changes, err := s.manager().SetInterfaceVDC(ctx, device, iface, vdc)
	if err != nil {
		return fmt.Errorf("set-interface-vdc failed: %w", err)
	}
	fmt.Fprint(stdout, ui.Changes(changes, false))
	return nil
}
