package allocate

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/imamik/nbctl/internal/platform/netbox"
)

// ResourceMAC is the resource label used for MAC allocation.
const ResourceMAC = "MAC address"

// GenerateMAC returns prefix followed by enough random octets from r to form
// a six-octet lower-case address. A nil reader uses crypto/rand.
func GenerateMAC(prefix string, r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	fixed, err := ParseMACPrefix(prefix)
	if err != nil {
		return "", err
	}
	random := make([]byte, 6-len(fixed))
	if _, err := io.ReadFull(r, random); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return net.HardwareAddr(append(fixed, random...)).String(), nil
}

// ParseMACPrefix parses one to five colon-separated octets.
func ParseMACPrefix(prefix string) ([]byte, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, fmt.Errorf("empty MAC prefix")
	}
	parts := strings.Split(prefix, ":")
	if len(parts) > 5 {
		return nil, fmt.Errorf("MAC prefix %q has more than 5 octets", prefix)
	}
	padded := make([]string, 6)
	copy(padded, parts)
	for i := len(parts); i < 6; i++ {
		padded[i] = "00"
	}
	hw, err := net.ParseMAC(strings.Join(padded, ":"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAC prefix %q: %w", prefix, err)
	}
	return hw[:len(parts)], nil
}

// NormalizeMAC validates a MAC-48 address and returns it in lower-case colon form.
func NormalizeMAC(mac string) (string, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(mac))
	if err != nil {
		return "", fmt.Errorf("invalid MAC address %q: %w", mac, err)
	}
	if len(hw) != 6 {
		return "", fmt.Errorf("invalid MAC address %q: expected 6 octets", mac)
	}
	return hw.String(), nil
}

// MACInventory is the subset of the inventory used to detect MAC conflicts.
type MACInventory interface {
	ListVMInterfaces(ctx context.Context, filter netbox.InterfaceFilter) ([]netbox.Interface, error)
	ListDeviceInterfaces(ctx context.Context, filter netbox.InterfaceFilter) ([]netbox.Interface, error)
}

// MACInUse reports whether any VM or device interface carries mac.
func MACInUse(ctx context.Context, inv MACInventory, mac string) (bool, error) {
	filter := netbox.InterfaceFilter{MACAddress: mac}
	vmIfaces, err := inv.ListVMInterfaces(ctx, filter)
	if err != nil {
		return false, err
	}
	if len(vmIfaces) > 0 {
		return true, nil
	}
	devIfaces, err := inv.ListDeviceInterfaces(ctx, filter)
	if err != nil {
		return false, err
	}
	return len(devIfaces) > 0, nil
}

// MAC allocates a MAC address with prefix that no interface uses yet.
func MAC(ctx context.Context, inv MACInventory, prefix string, attempts int, opts ...Option) (string, error) {
	return Allocate(ctx, ResourceMAC,
		func() (string, error) { return GenerateMAC(prefix, nil) },
		func(ctx context.Context, mac string) (bool, error) { return MACInUse(ctx, inv, mac) },
		attempts, opts...)
}
