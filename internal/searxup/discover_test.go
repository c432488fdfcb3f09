package searxup

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SuggestAddress(t *testing.T) {
	testCases := []struct {
		name     string
		current  string
		prefix   int
		expected string
	}{
		{
			name:     "typical /24",
			current:  "192.168.10.5",
			prefix:   24,
			expected: "192.168.10.15",
		},
		{
			name:     "offset wraps within host bits",
			current:  "192.168.1.250",
			prefix:   24,
			expected: "192.168.1.4",
		},
		{
			name:     "wider /16 keeps the network portion",
			current:  "10.20.30.40",
			prefix:   16,
			expected: "10.20.30.50",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := SuggestAddress(net.ParseIP(tc.current), tc.prefix)
			require.NotNil(t, actual)
			assert.Equal(t, tc.expected, actual.String())
		})
	}
}

func Test_SuggestAddress_Invalid(t *testing.T) {
	assert.Nil(t, SuggestAddress(net.ParseIP("fe80::1"), 64))
	assert.Nil(t, SuggestAddress(net.ParseIP("192.168.1.1"), 40))
}

func Test_gatewayFromRouteTable(t *testing.T) {
	// 0102A8C0 is 192.168.2.1 in the kernel's little-endian hex form.
	table := "Iface\tDestination\tGateway \tFlags\tRefCnt\tUse\tMetric\tMask\n" +
		"eth0\t00000000\t0102A8C0\t0003\t0\t0\t100\t00000000\n" +
		"eth0\t0002A8C0\t00000000\t0001\t0\t0\t100\t00FFFFFF\n"

	path := filepath.Join(t.TempDir(), "route")
	require.NoError(t, os.WriteFile(path, []byte(table), 0o644))

	gw, ok := gatewayFromRouteTable(path, "eth0")
	require.True(t, ok)
	assert.Equal(t, "192.168.2.1", gw.String())

	_, ok = gatewayFromRouteTable(path, "wlan0")
	assert.False(t, ok)
}
