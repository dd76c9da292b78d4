// Package ipnet provides IPv4 prefix arithmetic for address allocation.
//
// Inventory prefixes follow a fixed convention: the first host address of a
// prefix is the gateway. Together with the network and broadcast addresses it
// is never handed out as a host address.
package ipnet

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"
)

// Prefix is a parsed IPv4 network block.
type Prefix struct {
	network *net.IPNet
}

// ParsePrefix parses a CIDR block such as "10.0.0.0/24".
// Host bits are masked off, so "10.0.0.7/24" yields 10.0.0.0/24.
func ParsePrefix(cidr string) (Prefix, error) {
	_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
	if err != nil {
		return Prefix{}, fmt.Errorf("invalid CIDR prefix: %w", err)
	}
	if network.IP.To4() == nil {
		return Prefix{}, fmt.Errorf("only IPv4 prefixes are supported, got %s", cidr)
	}
	return Prefix{network: network}, nil
}

// String returns the prefix in CIDR notation.
func (p Prefix) String() string {
	if p.network == nil {
		return ""
	}
	return p.network.String()
}

// Bits returns the prefix length.
func (p Prefix) Bits() int {
	ones, _ := p.network.Mask.Size()
	return ones
}

// Size returns the total number of addresses in the prefix.
func (p Prefix) Size() uint64 {
	ones, bits := p.network.Mask.Size()
	return uint64(1) << (bits - ones)
}

// UsableHosts returns the number of addresses that are neither network nor broadcast.
func (p Prefix) UsableHosts() uint64 {
	size := p.Size()
	if size <= 2 {
		return 0
	}
	return size - 2
}

// Contains reports whether ip lies inside the prefix.
func (p Prefix) Contains(ip net.IP) bool {
	return p.network.Contains(ip)
}

// Network returns the network address.
func (p Prefix) Network() net.IP {
	return ipFromUint(ipToUint(p.network.IP))
}

// Broadcast returns the last address of the prefix.
func (p Prefix) Broadcast() net.IP {
	return ipFromUint(ipToUint(p.network.IP) + p.Size() - 1)
}

// Gateway returns the assumed gateway address, the first host of the prefix.
func (p Prefix) Gateway() net.IP {
	return ipFromUint(ipToUint(p.network.IP) + 1)
}

// Host returns the n-th host address of the prefix (1-based).
// Zero is the network address and the broadcast address is out of range.
func (p Prefix) Host(n int) (net.IP, error) {
	if n <= 0 {
		return nil, fmt.Errorf("host number %d would be the network address", n)
	}
	// #nosec G115
	if uint64(n) > p.UsableHosts() {
		return nil, fmt.Errorf("host number %d exceeds %d usable hosts of %s", n, p.UsableHosts(), p)
	}
	// #nosec G115
	return ipFromUint(ipToUint(p.network.IP) + uint64(n)), nil
}

// IsReserved reports whether ip is the network, broadcast or gateway address.
func (p Prefix) IsReserved(ip net.IP) bool {
	return ip.Equal(p.Network()) || ip.Equal(p.Broadcast()) || ip.Equal(p.Gateway())
}

// IsGateway reports whether ip is the gateway address of the prefix.
func (p Prefix) IsGateway(ip net.IP) bool {
	return ip.Equal(p.Gateway())
}

// WithLength formats ip with this prefix's length, e.g. "10.0.0.3/24".
func (p Prefix) WithLength(ip net.IP) string {
	return fmt.Sprintf("%s/%d", ip.String(), p.Bits())
}

// HostAddress strips the length from an inventory address such as "10.0.0.3/24".
func HostAddress(address string) (net.IP, error) {
	host := address
	if i := strings.IndexByte(address, '/'); i >= 0 {
		host = address[:i]
	}
	ip := net.ParseIP(strings.TrimSpace(host))
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("invalid IPv4 address %q", address)
	}
	return ip.To4(), nil
}

func ipToUint(ip net.IP) uint64 {
	return uint64(binary.BigEndian.Uint32(ip.To4()))
}

func ipFromUint(val uint64) net.IP {
	ip := make(net.IP, 4)
	// #nosec G115
	binary.BigEndian.PutUint32(ip, uint32(val))
	return ip
}
