package searxup

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
)

var (
	ErrIncompletePlan = errors.New("incomplete network plan")
	ErrPlanConflict   = errors.New("contradictory network plan")
)

// NetworkPlan is the frozen description of the host's addressing used as
// input to every later stage. It is built once per run and passed by
// value; nothing mutates it after BuildPlan returns. Netmask and
// PrefixLen are two renderings of the same value.
type NetworkPlan struct {
	Interface      string
	CurrentAddress net.IP
	StaticAddress  net.IP
	PrefixLen      int
	Netmask        string
	Gateway        net.IP
	DNSServers     []net.IP
}

// PlanOverrides carries operator-supplied values that win over whatever
// discovery produced. Empty strings mean "no override".
type PlanOverrides struct {
	Address string
	Gateway string
	Netmask string
	DNS     []string
}

// BuildPlan merges a discovery snapshot with operator overrides and
// validates the result. When no explicit address override is given the
// static address defaults to the suggestion derived from the current
// one. Fallback DNS servers are used when the operator supplies none.
func BuildPlan(d Discovery, o PlanOverrides, fallbackDNS []net.IP) (NetworkPlan, error) {
	plan := NetworkPlan{Interface: d.Interface}

	if d.HasAddress {
		plan.CurrentAddress = d.Address
		plan.PrefixLen = d.PrefixLen
		plan.StaticAddress = SuggestAddress(d.Address, d.PrefixLen)
	}
	if d.HasGateway {
		plan.Gateway = d.Gateway
	}

	if o.Netmask != "" {
		prefix, err := ToCIDR(o.Netmask)
		if err != nil {
			return NetworkPlan{}, err
		}
		plan.PrefixLen = prefix
	}
	if o.Address != "" {
		ip := net.ParseIP(o.Address)
		if ip == nil || ip.To4() == nil {
			return NetworkPlan{}, fmt.Errorf("%w: bad address %q", ErrPlanConflict, o.Address)
		}
		plan.StaticAddress = ip.To4()
	}
	if o.Gateway != "" {
		ip := net.ParseIP(o.Gateway)
		if ip == nil || ip.To4() == nil {
			return NetworkPlan{}, fmt.Errorf("%w: bad gateway %q", ErrPlanConflict, o.Gateway)
		}
		plan.Gateway = ip.To4()
	}
	for _, s := range o.DNS {
		ip := net.ParseIP(s)
		if ip == nil || ip.To4() == nil {
			return NetworkPlan{}, fmt.Errorf("%w: bad dns server %q", ErrPlanConflict, s)
		}
		plan.DNSServers = append(plan.DNSServers, ip.To4())
	}
	if len(plan.DNSServers) == 0 {
		plan.DNSServers = append(plan.DNSServers, fallbackDNS...)
	}

	if plan.StaticAddress == nil {
		return NetworkPlan{}, fmt.Errorf("%w: no address discovered and none supplied", ErrIncompletePlan)
	}
	if plan.Gateway == nil {
		return NetworkPlan{}, fmt.Errorf("%w: no gateway discovered and none supplied", ErrIncompletePlan)
	}
	if plan.PrefixLen <= 0 || plan.PrefixLen > 32 {
		return NetworkPlan{}, fmt.Errorf("%w: no netmask discovered and none supplied", ErrIncompletePlan)
	}

	netmask, err := ToNetmask(plan.PrefixLen)
	if err != nil {
		return NetworkPlan{}, err
	}
	plan.Netmask = netmask

	if !sameSubnet(plan.StaticAddress, plan.Gateway, plan.PrefixLen) {
		return NetworkPlan{}, fmt.Errorf("%w: gateway %s not on %s/%d",
			ErrPlanConflict, plan.Gateway, plan.StaticAddress, plan.PrefixLen)
	}
	return plan, nil
}

// CIDR renders the static address with its prefix, e.g. "192.168.10.15/24".
func (p NetworkPlan) CIDR() string {
	return fmt.Sprintf("%s/%d", p.StaticAddress, p.PrefixLen)
}

func sameSubnet(a, b net.IP, prefix int) bool {
	av, bv := a.To4(), b.To4()
	if av == nil || bv == nil {
		return false
	}
	mask := uint32(0xffffffff) &^ (uint32(0xffffffff) >> prefix)
	return binary.BigEndian.Uint32(av)&mask == binary.BigEndian.Uint32(bv)&mask
}
