package searxup

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planFixture() NetworkPlan {
	return NetworkPlan{
		Interface:     "eth0",
		StaticAddress: net.ParseIP("192.168.10.15").To4(),
		PrefixLen:     24,
		Netmask:       "255.255.255.0",
		Gateway:       net.ParseIP("192.168.10.1").To4(),
	}
}

func Test_ResolveProfile(t *testing.T) {
	testCases := []struct {
		name     string
		variant  Variant
		input    VariantInput
		expected VariantProfile
		wantErr  bool
	}{
		{
			name:    "ip only uses the static address",
			variant: VariantIPOnly,
			expected: VariantProfile{
				Variant:       VariantIPOnly,
				EffectiveHost: "192.168.10.15",
			},
		},
		{
			name:    "local hostname defaults the label",
			variant: VariantLocalHostname,
			expected: VariantProfile{
				Variant:       VariantLocalHostname,
				HostnameLabel: "searxng",
				EffectiveHost: "searxng.local",
			},
		},
		{
			name:    "local hostname custom label",
			variant: VariantLocalHostname,
			input:   VariantInput{HostnameLabel: "lab"},
			expected: VariantProfile{
				Variant:       VariantLocalHostname,
				HostnameLabel: "lab",
				EffectiveHost: "lab.local",
			},
		},
		{
			name:    "dual uses the label too",
			variant: VariantDualHTTPHTTPS,
			input:   VariantInput{HostnameLabel: "lab"},
			expected: VariantProfile{
				Variant:       VariantDualHTTPHTTPS,
				HostnameLabel: "lab",
				EffectiveHost: "lab.local",
			},
		},
		{
			name:    "label with dots rejected",
			variant: VariantLocalHostname,
			input:   VariantInput{HostnameLabel: "lab.example"},
			wantErr: true,
		},
		{
			name:    "public domain",
			variant: VariantPublicDomain,
			input:   VariantInput{Domain: "search.example.com", ContactEmail: "ops@example.com"},
			expected: VariantProfile{
				Variant:       VariantPublicDomain,
				Domain:        "search.example.com",
				ContactEmail:  "ops@example.com",
				EffectiveHost: "search.example.com",
			},
		},
		{
			name:    "public domain without domain",
			variant: VariantPublicDomain,
			input:   VariantInput{ContactEmail: "ops@example.com"},
			wantErr: true,
		},
		{
			name:    "public domain without email",
			variant: VariantPublicDomain,
			input:   VariantInput{Domain: "search.example.com"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ResolveProfile(tc.variant, planFixture(), tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMissingVariantInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func Test_ParseVariant(t *testing.T) {
	for _, v := range []Variant{VariantIPOnly, VariantLocalHostname, VariantPublicDomain, VariantDualHTTPHTTPS} {
		parsed, err := ParseVariant(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}

	_, err := ParseVariant("multi-host")
	assert.Error(t, err)
}

func Test_Variant_Flags(t *testing.T) {
	assert.True(t, VariantLocalHostname.UsesMDNS())
	assert.True(t, VariantDualHTTPHTTPS.UsesMDNS())
	assert.False(t, VariantIPOnly.UsesMDNS())
	assert.False(t, VariantPublicDomain.UsesMDNS())

	assert.True(t, VariantIPOnly.NeedsPlaintextPort())
	assert.True(t, VariantLocalHostname.NeedsPlaintextPort())
	assert.True(t, VariantDualHTTPHTTPS.NeedsPlaintextPort())
	assert.False(t, VariantPublicDomain.NeedsPlaintextPort())
}
