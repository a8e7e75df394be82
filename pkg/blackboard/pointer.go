package blackboard

import "strings"

// IsPointer reports whether an XML attribute value references a blackboard
// entry, i.e. has the form "{key}".
func IsPointer(s string) bool {
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}

// StripPointer removes the braces from a "{key}" reference. The bool result
// is false when s is a plain literal.
func StripPointer(s string) (string, bool) {
	if !IsPointer(s) {
		return "", false
	}
	return s[1 : len(s)-1], true
}
