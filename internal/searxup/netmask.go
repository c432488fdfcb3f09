package searxup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidNetmask = errors.New("invalid netmask")

// bits per valid netmask octet
var maskOctetBits = map[int]int{
	0: 0, 128: 1, 192: 2, 224: 3, 240: 4, 248: 5, 252: 6, 254: 7, 255: 8,
}

// ToCIDR converts a dotted-decimal netmask like "255.255.255.0" to its
// prefix length. Octets must be contiguous ones followed by zeros; a zero
// octet followed by a non-zero octet is rejected.
func ToCIDR(netmask string) (int, error) {
	parts := strings.Split(netmask, ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNetmask, netmask)
	}

	prefix := 0
	sealed := false
	for _, part := range parts {
		octet, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNetmask, netmask)
		}
		bits, ok := maskOctetBits[octet]
		if !ok {
			return 0, fmt.Errorf("%w: octet %d in %q", ErrInvalidNetmask, octet, netmask)
		}
		if sealed && bits != 0 {
			return 0, fmt.Errorf("%w: non-contiguous mask %q", ErrInvalidNetmask, netmask)
		}
		if bits < 8 {
			sealed = true
		}
		prefix += bits
	}
	return prefix, nil
}

// ToNetmask converts a prefix length (0-32) to dotted-decimal form.
func ToNetmask(prefix int) (string, error) {
	if prefix < 0 || prefix > 32 {
		return "", fmt.Errorf("%w: prefix length %d out of range", ErrInvalidNetmask, prefix)
	}

	octets := make([]string, 4)
	remaining := prefix
	for i := 0; i < 4; i++ {
		bits := remaining
		if bits > 8 {
			bits = 8
		}
		remaining -= bits
		octets[i] = strconv.Itoa(255 &^ (255 >> bits))
	}
	return strings.Join(octets, "."), nil
}
