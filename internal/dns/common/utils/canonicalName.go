package utils

import "strings"

// CanonicalDNSName returns a DNS name in the canonical form used throughout
// this codebase: surrounding whitespace trimmed and exactly one trailing dot.
// Name equality everywhere is exact string equality of this form, so the
// original label case is preserved.
//
// The root name canonicalizes to the empty string; on the wire it is a
// single zero octet.
func CanonicalDNSName(name string) string {
	name = strings.TrimSpace(name)
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	if name == "" {
		return ""
	}
	return name + "."
}

// Labels splits a canonical DNS name into its labels, most specific first.
// The root name yields no labels.
func Labels(name string) []string {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return nil
	}
	return strings.Split(name, ".")
}
