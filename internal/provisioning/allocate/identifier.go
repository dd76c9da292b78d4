package allocate

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/imamik/nbctl/internal/platform/netbox"
)

// ResourceIdentifier is the resource label used for VM identifier allocation.
const ResourceIdentifier = "VM identifier"

// GenerateIdentifier returns a random UUID. In short mode only the first
// hyphen-separated group is kept.
func GenerateIdentifier(short bool) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return ShortenIdentifier(id.String(), short), nil
}

// ShortenIdentifier truncates id to its first group when short is set.
func ShortenIdentifier(id string, short bool) string {
	if !short {
		return id
	}
	if i := strings.IndexByte(id, '-'); i >= 0 {
		return id[:i]
	}
	return id
}

// VMLister is the subset of the inventory used to detect identifier and slot conflicts.
type VMLister interface {
	ListVirtualMachines(ctx context.Context, filter netbox.VirtualMachineFilter) ([]netbox.VirtualMachine, error)
}

// IdentifierInUse reports whether a VM already carries id in its uuid
// custom field. In short mode a VM whose uuid starts with the same group
// counts as a conflict.
func IdentifierInUse(ctx context.Context, inv VMLister, id string, short bool) (bool, error) {
	filter := netbox.VirtualMachineFilter{UUID: id}
	if short {
		filter = netbox.VirtualMachineFilter{UUIDPrefix: id}
	}
	vms, err := inv.ListVirtualMachines(ctx, filter)
	if err != nil {
		return false, err
	}
	for _, vm := range vms {
		if ShortenIdentifier(vm.CustomFields.String("uuid"), short) == id {
			return true, nil
		}
	}
	return false, nil
}

// Identifier allocates a VM identifier unused by any VM.
func Identifier(ctx context.Context, inv VMLister, short bool, attempts int, opts ...Option) (string, error) {
	return Allocate(ctx, ResourceIdentifier,
		func() (string, error) { return GenerateIdentifier(short) },
		func(ctx context.Context, id string) (bool, error) { return IdentifierInUse(ctx, inv, id, short) },
		attempts, opts...)
}
