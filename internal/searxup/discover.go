package searxup

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

var ErrNoInterfaceFound = errors.New("no usable network interface found")

// Discovery is a snapshot of the live network state of one interface,
// taken before any plan is built. Purely observational.
type Discovery struct {
	Interface  string
	Address    net.IP
	PrefixLen  int
	HasAddress bool
	Gateway    net.IP
	HasGateway bool
}

// addressOffset is added to the host portion of the current address to
// suggest a static one. The candidate is not probed for collisions on
// the LAN; the operator reviews it before it is applied.
const addressOffset = 10

// ListInterfaces returns the names of all non-loopback interfaces that
// are up, in kernel order.
func ListInterfaces() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		names = append(names, iface.Name)
	}
	if len(names) == 0 {
		return nil, ErrNoInterfaceFound
	}
	return names, nil
}

// CurrentAddress returns the first IPv4 address bound to iface and its
// prefix length. ok is false when the interface has no IPv4 address.
func CurrentAddress(iface string) (ip net.IP, prefix int, ok bool, err error) {
	nif, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, 0, false, fmt.Errorf("interface %s: %w", iface, err)
	}
	addrs, err := nif.Addrs()
	if err != nil {
		return nil, 0, false, err
	}

	for _, addr := range addrs {
		ipnet, isNet := addr.(*net.IPNet)
		if !isNet {
			continue
		}
		v4 := ipnet.IP.To4()
		if v4 == nil {
			continue
		}
		ones, _ := ipnet.Mask.Size()
		return v4, ones, true, nil
	}
	return nil, 0, false, nil
}

// CurrentGateway returns the default-route next hop for iface, read from
// /proc/net/route. ok is false when no default route uses the interface.
func CurrentGateway(iface string) (net.IP, bool) {
	return gatewayFromRouteTable("/proc/net/route", iface)
}

func gatewayFromRouteTable(path, iface string) (net.IP, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if fields[0] != iface || fields[1] != "00000000" {
			continue
		}
		raw, err := strconv.ParseUint(fields[2], 16, 32)
		if err != nil {
			continue
		}
		// /proc/net/route stores addresses little-endian
		gw := make(net.IP, 4)
		binary.LittleEndian.PutUint32(gw, uint32(raw))
		return gw, true
	}
	return nil, false
}

// Discover snapshots iface: its bound IPv4 address and default gateway.
func Discover(iface string) (Discovery, error) {
	d := Discovery{Interface: iface}

	ip, prefix, ok, err := CurrentAddress(iface)
	if err != nil {
		return Discovery{}, err
	}
	if ok {
		d.Address = ip
		d.PrefixLen = prefix
		d.HasAddress = true
	}

	if gw, found := CurrentGateway(iface); found {
		d.Gateway = gw
		d.HasGateway = true
	}
	return d, nil
}

// SuggestAddress proposes a static address near the current one: the
// network portion is kept and addressOffset is added to the host
// portion, wrapping within the host bits.
func SuggestAddress(current net.IP, prefix int) net.IP {
	v4 := current.To4()
	if v4 == nil || prefix < 0 || prefix > 32 {
		return nil
	}

	addr := binary.BigEndian.Uint32(v4)
	hostMask := uint32(0xffffffff) >> prefix
	network := addr &^ hostMask
	host := (addr + addressOffset) & hostMask

	out := make(net.IP, 4)
	binary.BigEndian.PutUint32(out, network|host)
	return out
}
