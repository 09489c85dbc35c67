package deb

import (
	"strconv"
	"strings"
)

// Compare implements Debian version ordering (spec §4.5): optional epoch
// (N:), upstream version, and optional Debian revision (-rev), each
// segment compared with the alternating digit/non-digit rule below.
//
// Ported against the upstream algorithm (dpkg's verrevcmp) rather than
// paraphrased, per spec §9's implementer's note — the pack carries no
// standalone Go port of this algorithm to copy from. Returns -1, 0, or 1.
func Compare(v1, v2 string) int {
	e1, u1, r1 := splitEpochUpstreamRevision(v1)
	e2, u2, r2 := splitEpochUpstreamRevision(v2)

	if c := compareEpoch(e1, e2); c != 0 {
		return c
	}
	if c := verrevcmp(u1, u2); c != 0 {
		return c
	}
	return verrevcmp(r1, r2)
}

// Less reports whether v1 sorts strictly before v2.
func Less(v1, v2 string) bool { return Compare(v1, v2) < 0 }

// Equal reports whether v1 and v2 are Debian-version-equal.
func Equal(v1, v2 string) bool { return Compare(v1, v2) == 0 }

// Satisfies reports whether installedVersion satisfies the given operator
// against constraintVersion. Unknown operators return true (fail-open); no
// diagnostic is logged or emitted for them.
func Satisfies(installedVersion, op, constraintVersion string) bool {
	c := Compare(installedVersion, constraintVersion)
	switch op {
	case "<<":
		return c < 0
	case "<=":
		return c <= 0
	case "=":
		return c == 0
	case ">=":
		return c >= 0
	case ">>":
		return c > 0
	default:
		return true
	}
}

func splitEpochUpstreamRevision(v string) (epoch, upstream, revision string) {
	rest := v
	if i := strings.IndexByte(rest, ':'); i != -1 {
		epoch = rest[:i]
		rest = rest[i+1:]
	}
	if i := strings.LastIndexByte(rest, '-'); i != -1 {
		upstream = rest[:i]
		revision = rest[i+1:]
	} else {
		upstream = rest
	}
	return epoch, upstream, revision
}

func compareEpoch(e1, e2 string) int {
	n1, err1 := strconv.Atoi(e1)
	if e1 == "" {
		n1 = 0
		err1 = nil
	}
	n2, err2 := strconv.Atoi(e2)
	if e2 == "" {
		n2 = 0
		err2 = nil
	}
	if err1 == nil && err2 == nil {
		switch {
		case n1 < n2:
			return -1
		case n1 > n2:
			return 1
		default:
			return 0
		}
	}
	// Non-numeric epoch (malformed input): fall back to a stable byte
	// comparison rather than panicking.
	return strings.Compare(e1, e2)
}

// order assigns the alternating-run comparison weight used by verrevcmp:
// '~' sorts before end-of-string, end-of-string (and digits, handled
// separately) sort before letters, letters sort before everything else.
func order(c byte) int {
	switch {
	case c == '~':
		return -1
	case isDigit(c):
		return 0
	case c == 0:
		return 0
	case isAlpha(c):
		return int(c)
	default:
		return int(c) + 256
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func byteAt(s string, i int) byte {
	if i < len(s) {
		return s[i]
	}
	return 0
}

// verrevcmp compares one version segment (upstream or revision) using the
// alternating non-digit/digit run rule from spec §4.5.
func verrevcmp(a, b string) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		// Compare the leading non-digit run character by character.
		for (i < len(a) && !isDigit(a[i])) || (j < len(b) && !isDigit(b[j])) {
			ac, bc := order(byteAt(a, i)), order(byteAt(b, j))
			if ac != bc {
				return sign(ac - bc)
			}
			if i < len(a) {
				i++
			}
			if j < len(b) {
				j++
			}
		}

		// Skip leading zeros before comparing the digit run numerically.
		for i < len(a) && a[i] == '0' {
			i++
		}
		for j < len(b) && b[j] == '0' {
			j++
		}

		startI, startJ := i, j
		for i < len(a) && isDigit(a[i]) {
			i++
		}
		for j < len(b) && isDigit(b[j]) {
			j++
		}
		digitsA, digitsB := a[startI:i], b[startJ:j]

		switch {
		case len(digitsA) != len(digitsB):
			if len(digitsA) > len(digitsB) {
				return 1
			}
			return -1
		case digitsA != digitsB:
			if digitsA > digitsB {
				return 1
			}
			return -1
		}
	}
	return 0
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// BumpVersion increments the Debian revision of v, guaranteeing the result
// sorts strictly after v. Kept from the teacher's deb/util.go BumpVersion,
// generalized only in name (still operates on the raw string).
//
// Strategy: no revision -> append "-1"; purely numeric revision -> +1;
// otherwise bump the last alphanumeric character (0-9, a-z), carrying into
// a fresh trailing segment on overflow.
func BumpVersion(v string) string {
	idx := strings.LastIndex(v, "-")
	if idx == -1 {
		return v + "-1"
	}
	prefix := v[:idx+1]
	rev := v[idx+1:]
	if rev == "" {
		return prefix + "1"
	}

	if n, err := strconv.Atoi(rev); err == nil {
		return prefix + strconv.Itoa(n+1)
	}

	runes := []rune(rev)
	for i := len(runes) - 1; i >= 0; i-- {
		c := runes[i]
		switch {
		case c >= '0' && c < '9':
			runes[i]++
			return prefix + string(runes)
		case c == '9':
			runes[i] = 'a'
			return prefix + string(runes)
		case c >= 'a' && c < 'z':
			runes[i]++
			return prefix + string(runes)
		case c == 'z':
			return prefix + string(runes[:i+1]) + "1" + string(runes[i+1:])
		}
	}
	return v + "1"
}
