package inventory

import (
	"context"
	"fmt"

	"github.com/imamik/nbctl/internal/platform/netbox"
)

// DefaultLengthUnit is used when a length is given without a unit.
const DefaultLengthUnit = "cm"

// CableRequest describes a cable between two interfaces.
type CableRequest struct {
	HostA, PortA string
	HostB, PortB string

	Type        string
	Description string
	Label       string
	Color       string
	Length      *float64
	// Unit is dropped when no length is given.
	Unit string
}

// AddCable connects two interfaces of VMs or devices.
func (m *Manager) AddCable(ctx context.Context, req CableRequest) (*netbox.Cable, error) {
	a, err := m.endpoint(ctx, req.HostA, req.PortA)
	if err != nil {
		return nil, fmt.Errorf("side A: %w", err)
	}
	b, err := m.endpoint(ctx, req.HostB, req.PortB)
	if err != nil {
		return nil, fmt.Errorf("side B: %w", err)
	}
	if a.ObjectType == b.ObjectType && a.ObjectID == b.ObjectID {
		return nil, fmt.Errorf("cannot cable %s:%s to itself", req.HostA, req.PortA)
	}

	body := netbox.CableCreate{
		ATerminations: []netbox.Termination{a},
		BTerminations: []netbox.Termination{b},
		Type:          req.Type,
		Label:         req.Label,
		Color:         req.Color,
		Description:   req.Description,
	}
	if req.Length != nil {
		body.Length = req.Length
		body.LengthUnit = req.Unit
		if body.LengthUnit == "" {
			body.LengthUnit = DefaultLengthUnit
		}
	}

	cable, err := m.inv.CreateCable(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create cable: %w", err)
	}
	return cable, nil
}

func (m *Manager) endpoint(ctx context.Context, host, port string) (netbox.Termination, error) {
	h, err := m.ResolveHost(ctx, host)
	if err != nil {
		return netbox.Termination{}, err
	}
	iface, err := m.Interface(ctx, h, port)
	if err != nil {
		return netbox.Termination{}, err
	}
	return netbox.Termination{ObjectType: iface.ContentType(), ObjectID: iface.ID}, nil
}
