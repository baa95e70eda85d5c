package origin

// Host pattern matching for the trusted-host allowlist. Patterns are a
// minimal glob language matched segment-wise against host names; matching is
// an explicit finite comparison, never a runtime-generated regex, so cost is
// bounded regardless of the configured pattern.

import (
	"errors"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const (
	// maxHostPatternLen caps configured pattern length (DNS name limit).
	maxHostPatternLen = 253
	// maxWildcardRun caps the characters a single '*' may consume (DNS
	// label limit).
	maxWildcardRun = 63
	// maxWildcards caps the wildcard characters per pattern.
	maxWildcards = 2
	// wildcardSegments is how many leftmost dot-segments may carry
	// wildcards.
	wildcardSegments = 2
)

// CheckHost validates a configured trusted-host pattern. Only alphanumeric
// characters, dash, dot and '*' are allowed; no '**' or '..'; at most two
// wildcards in total, and wildcards only within the two leftmost
// dot-segments.
func CheckHost(pattern string) error {
	if pattern == "" {
		return errors.New("empty host pattern")
	}
	if len(pattern) > maxHostPatternLen {
		return errors.New("host pattern too long")
	}
	wildcards := 0
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
		case c == '*':
			wildcards++
		default:
			return errors.New("invalid character in host pattern")
		}
	}
	if strings.Contains(pattern, "**") {
		return errors.New("consecutive wildcards not allowed")
	}
	if strings.Contains(pattern, "..") {
		return errors.New("empty host segment not allowed")
	}
	if wildcards > maxWildcards {
		return errors.New("too many wildcards in host pattern")
	}
	for i, label := range strings.Split(pattern, ".") {
		if i >= wildcardSegments && strings.Contains(label, "*") {
			return errors.New("wildcard only allowed in subdomain segments")
		}
	}
	return nil
}

// MatchHost reports whether host matches pattern. Both are compared
// case-insensitively, segment by segment; a '*' within a segment matches up
// to 63 alphanumeric or dash characters of that segment.
func MatchHost(pattern, host string) bool {
	pattern = strings.ToLower(pattern)
	host = strings.ToLower(host)

	patternLabels := strings.Split(pattern, ".")
	hostLabels := strings.Split(host, ".")
	if len(patternLabels) != len(hostLabels) {
		return false
	}
	for i := range patternLabels {
		if !matchLabel(patternLabels[i], hostLabels[i]) {
			return false
		}
	}
	return true
}

// matchLabel matches one pattern segment against one host label. Recursion
// depth is bounded by the wildcard count per pattern.
func matchLabel(pattern, label string) bool {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return pattern == label
	}
	if !strings.HasPrefix(label, pattern[:star]) {
		return false
	}
	rest := pattern[star+1:]
	remainder := label[star:]
	max := len(remainder)
	if max > maxWildcardRun {
		max = maxWildcardRun
	}
	for n := 0; n <= max; n++ {
		if !isLabelRun(remainder[:n]) {
			break
		}
		if matchLabel(rest, remainder[n:]) {
			return true
		}
	}
	return false
}

func isLabelRun(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			continue
		}
		return false
	}
	return true
}

// SuffixWarning returns a non-empty message when the non-wildcard remainder
// of a pattern is exactly a public suffix, meaning the pattern would trust
// every registrable domain under it (e.g. "*.com"). Advisory only; the
// pattern still matches per CheckHost/MatchHost semantics.
func SuffixWarning(pattern string) string {
	labels := strings.Split(strings.ToLower(pattern), ".")
	i := 0
	for i < len(labels) && strings.Contains(labels[i], "*") {
		i++
	}
	rest := strings.Join(labels[i:], ".")
	if rest == "" || rest == pattern {
		return ""
	}
	if suffix, icann := publicsuffix.PublicSuffix(rest); icann && suffix == rest {
		return "host pattern wildcard spans the public suffix " + rest
	}
	return ""
}
