package ipnet

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrefix(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "network address", input: "10.0.0.0/24", want: "10.0.0.0/24"},
		{name: "host bits masked", input: "10.0.0.9/24", want: "10.0.0.0/24"},
		{name: "surrounding space", input: " 192.168.1.0/28 ", want: "192.168.1.0/28"},
		{name: "garbage", input: "not-a-prefix", wantErr: true},
		{name: "ipv6", input: "2001:db8::/64", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := ParsePrefix(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
		})
	}
}

func TestPrefix_ReservedAddresses(t *testing.T) {
	t.Parallel()
	p, err := ParsePrefix("10.0.0.0/24")
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.0", p.Network().String())
	assert.Equal(t, "10.0.0.1", p.Gateway().String())
	assert.Equal(t, "10.0.0.255", p.Broadcast().String())
	assert.Equal(t, uint64(254), p.UsableHosts())

	assert.True(t, p.IsReserved(net.ParseIP("10.0.0.0")))
	assert.True(t, p.IsReserved(net.ParseIP("10.0.0.1")))
	assert.True(t, p.IsReserved(net.ParseIP("10.0.0.255")))
	assert.False(t, p.IsReserved(net.ParseIP("10.0.0.3")))
	assert.True(t, p.IsGateway(net.ParseIP("10.0.0.1")))
	assert.False(t, p.IsGateway(net.ParseIP("10.0.0.2")))
}

func TestPrefix_Host(t *testing.T) {
	t.Parallel()
	p, err := ParsePrefix("10.1.2.0/29")
	require.NoError(t, err)

	ip, err := p.Host(3)
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", ip.String())
	assert.Equal(t, "10.1.2.3/29", p.WithLength(ip))

	_, err = p.Host(0)
	assert.Error(t, err)

	last, err := p.Host(6)
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.6", last.String())

	_, err = p.Host(7)
	assert.Error(t, err, "broadcast must be out of range")
}

func TestHostAddress(t *testing.T) {
	t.Parallel()
	ip, err := HostAddress("10.0.0.3/24")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.3", ip.String())

	ip, err = HostAddress("10.0.0.4")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.4", ip.String())

	_, err = HostAddress("10.0.0/24")
	assert.Error(t, err)
}
