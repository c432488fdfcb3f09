package searxup

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discoveryFixture() Discovery {
	return Discovery{
		Interface:  "eth0",
		Address:    net.ParseIP("192.168.10.5").To4(),
		PrefixLen:  24,
		HasAddress: true,
		Gateway:    net.ParseIP("192.168.10.1").To4(),
		HasGateway: true,
	}
}

var testDNS = []net.IP{net.ParseIP("1.1.1.1").To4(), net.ParseIP("9.9.9.9").To4()}

func Test_BuildPlan(t *testing.T) {
	testCases := []struct {
		name      string
		discovery Discovery
		overrides PlanOverrides
		expected  NetworkPlan
		wantErr   error
	}{
		{
			name:      "discovery only, static address suggested",
			discovery: discoveryFixture(),
			expected: NetworkPlan{
				Interface:      "eth0",
				CurrentAddress: net.ParseIP("192.168.10.5").To4(),
				StaticAddress:  net.ParseIP("192.168.10.15").To4(),
				PrefixLen:      24,
				Netmask:        "255.255.255.0",
				Gateway:        net.ParseIP("192.168.10.1").To4(),
				DNSServers:     testDNS,
			},
		},
		{
			name:      "override wins over discovery",
			discovery: discoveryFixture(),
			overrides: PlanOverrides{
				Address: "192.168.10.40",
				Gateway: "192.168.10.254",
				DNS:     []string{"192.168.10.1"},
			},
			expected: NetworkPlan{
				Interface:      "eth0",
				CurrentAddress: net.ParseIP("192.168.10.5").To4(),
				StaticAddress:  net.ParseIP("192.168.10.40").To4(),
				PrefixLen:      24,
				Netmask:        "255.255.255.0",
				Gateway:        net.ParseIP("192.168.10.254").To4(),
				DNSServers:     []net.IP{net.ParseIP("192.168.10.1").To4()},
			},
		},
		{
			name: "overrides alone complete a bare discovery",
			discovery: Discovery{
				Interface: "eth0",
			},
			overrides: PlanOverrides{
				Address: "10.0.0.20",
				Gateway: "10.0.0.1",
				Netmask: "255.255.255.0",
			},
			expected: NetworkPlan{
				Interface:     "eth0",
				StaticAddress: net.ParseIP("10.0.0.20").To4(),
				PrefixLen:     24,
				Netmask:       "255.255.255.0",
				Gateway:       net.ParseIP("10.0.0.1").To4(),
				DNSServers:    testDNS,
			},
		},
		{
			name:      "missing address",
			discovery: Discovery{Interface: "eth0"},
			overrides: PlanOverrides{Gateway: "10.0.0.1", Netmask: "255.255.255.0"},
			wantErr:   ErrIncompletePlan,
		},
		{
			name: "missing gateway",
			discovery: Discovery{
				Interface:  "eth0",
				Address:    net.ParseIP("10.0.0.5").To4(),
				PrefixLen:  24,
				HasAddress: true,
			},
			wantErr: ErrIncompletePlan,
		},
		{
			name:      "missing netmask",
			discovery: Discovery{Interface: "eth0"},
			overrides: PlanOverrides{Address: "10.0.0.20", Gateway: "10.0.0.1"},
			wantErr:   ErrIncompletePlan,
		},
		{
			name:      "gateway off subnet",
			discovery: discoveryFixture(),
			overrides: PlanOverrides{Gateway: "192.168.99.1"},
			wantErr:   ErrPlanConflict,
		},
		{
			name:      "unparseable override",
			discovery: discoveryFixture(),
			overrides: PlanOverrides{Address: "not-an-ip"},
			wantErr:   ErrPlanConflict,
		},
		{
			name:      "invalid netmask override",
			discovery: discoveryFixture(),
			overrides: PlanOverrides{Netmask: "255.0.255.0"},
			wantErr:   ErrInvalidNetmask,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := BuildPlan(tc.discovery, tc.overrides, testDNS)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func Test_NetworkPlan_NetmaskPrefixAgree(t *testing.T) {
	plan, err := BuildPlan(discoveryFixture(), PlanOverrides{Netmask: "255.255.0.0"}, testDNS)
	require.NoError(t, err)

	prefix, err := ToCIDR(plan.Netmask)
	require.NoError(t, err)
	assert.Equal(t, plan.PrefixLen, prefix)
	assert.Equal(t, 16, prefix)
	assert.Equal(t, "192.168.10.15/16", plan.CIDR())
}
