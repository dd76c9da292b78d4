package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/imamik/nbctl/internal/platform/netbox"
	"github.com/imamik/nbctl/internal/util/ptr"
)

// Service port bounds.
const (
	MinPort = 1
	MaxPort = 65534
)

// ParseProtoPort parses "tcp/22" style service specs. The protocol is
// case-insensitive and must be tcp or udp.
func ParseProtoPort(s string) (string, int, error) {
	proto, portStr, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return "", 0, fmt.Errorf("invalid service %q, expected PROTO/PORT", s)
	}
	proto = strings.ToLower(proto)
	if proto != "tcp" && proto != "udp" {
		return "", 0, fmt.Errorf("invalid protocol %q, use tcp or udp", proto)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < MinPort || port > MaxPort {
		return "", 0, fmt.Errorf("invalid port number %q", portStr)
	}
	return proto, port, nil
}

// AddService records a service called name on host. The exact
// name/protocol/port combination must not exist yet, and services sharing a
// name must all live on the same VM or device.
func (m *Manager) AddService(ctx context.Context, host, name, protoPort string) (*netbox.Service, error) {
	proto, port, err := ParseProtoPort(protoPort)
	if err != nil {
		return nil, err
	}
	h, err := m.ResolveHost(ctx, host)
	if err != nil {
		return nil, err
	}

	dups, err := m.inv.ListServices(ctx, netbox.ServiceFilter{Name: name, Protocol: proto, Port: port})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	if len(dups) > 0 {
		return nil, fmt.Errorf("%w: service %s %s/%d", ErrExists, name, proto, port)
	}

	named, err := m.inv.ListServices(ctx, netbox.ServiceFilter{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	if len(named) > 0 {
		if err := sameParent(h, named[0]); err != nil {
			return nil, err
		}
	}

	body := netbox.ServiceCreate{Name: name, Protocol: proto, Ports: []int{port}}
	if h.IsVM() {
		body.VirtualMachine = ptr.Int(h.VM.ID)
	} else {
		body.Device = ptr.Int(h.Device.ID)
	}
	svc, err := m.inv.CreateService(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create service %s: %w", name, err)
	}
	return svc, nil
}

func sameParent(h *Host, existing netbox.Service) error {
	switch {
	case existing.VirtualMachine != nil:
		if !h.IsVM() || h.VM.ID != existing.VirtualMachine.ID {
			return fmt.Errorf("services named %s must reside on VM %s", existing.Name, existing.VirtualMachine.Name)
		}
	case existing.Device != nil:
		if h.IsVM() || h.Device.ID != existing.Device.ID {
			return fmt.Errorf("services named %s must reside on device %s", existing.Name, existing.Device.Name)
		}
	default:
		return fmt.Errorf("service %s (id %d) has no parent", existing.Name, existing.ID)
	}
	return nil
}
