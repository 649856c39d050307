package automaton

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRule is returned by ParseRule for malformed notation.
var ErrInvalidRule = errors.New("automaton: invalid rule")

// Rule is an outer-totalistic rule over the Moore neighbourhood. Bit n of
// Birth is set when a dead cell with n live neighbours is born; bit n of
// Survive when a live cell with n live neighbours survives.
type Rule struct {
	Birth   uint32
	Survive uint32
}

// Conway is B3/S23.
var Conway = Rule{Birth: 1 << 3, Survive: 1<<2 | 1<<3}

// ParseRule parses "B3/S23" notation. Letters are case-insensitive, the
// parts may appear in either order, and the bare "23/3" (survive/birth)
// form is accepted.
func ParseRule(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("%w: %q", ErrInvalidRule, s)
	}

	var r Rule
	var seenB, seenS bool
	for i, part := range parts {
		kind := byte('S')
		if i == 1 {
			kind = 'B'
		}
		if part != "" && (part[0] == 'B' || part[0] == 'b' || part[0] == 'S' || part[0] == 's') {
			kind = part[0] &^ 0x20
			part = part[1:]
		}
		mask, err := digitMask(part)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: %q: %v", ErrInvalidRule, s, err)
		}
		switch kind {
		case 'B':
			if seenB {
				return Rule{}, fmt.Errorf("%w: %q: birth given twice", ErrInvalidRule, s)
			}
			seenB, r.Birth = true, mask
		default:
			if seenS {
				return Rule{}, fmt.Errorf("%w: %q: survival given twice", ErrInvalidRule, s)
			}
			seenS, r.Survive = true, mask
		}
	}
	return r, nil
}

func digitMask(s string) (uint32, error) {
	var mask uint32
	for _, c := range s {
		if c < '0' || c > '8' {
			return 0, fmt.Errorf("neighbour count %q out of range 0-8", c)
		}
		mask |= 1 << (c - '0')
	}
	return mask, nil
}

// String formats the rule in B/S notation.
func (r Rule) String() string {
	return "B" + maskDigits(r.Birth) + "/S" + maskDigits(r.Survive)
}

func maskDigits(mask uint32) string {
	var b strings.Builder
	for n := 0; n <= 8; n++ {
		if mask&(1<<n) != 0 {
			b.WriteByte(byte('0' + n))
		}
	}
	return b.String()
}

// Next returns the next state of a cell given its state and its number of
// live neighbours.
func (r Rule) Next(alive bool, neighbours int) bool {
	mask := r.Birth
	if alive {
		mask = r.Survive
	}
	return mask>>uint(neighbours)&1 == 1
}
