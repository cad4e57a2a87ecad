package targetfile

import "strings"

// Predicate decides whether a scalar string is a path reference.
type Predicate func(s string) bool

// LooksLikePath is the default Predicate. It accepts any non-empty string
// containing a separator, starting with "./", "../", "~/" or "/", or carrying
// a drive-letter prefix such as `C:\`.
func LooksLikePath(s string) bool {
	if s == "" {
		return false
	}
	return strings.ContainsAny(s, `/\`) ||
		strings.HasPrefix(s, "./") ||
		strings.HasPrefix(s, "../") ||
		strings.HasPrefix(s, "~/") ||
		hasDriveLetter(s)
}

func hasDriveLetter(s string) bool {
	if len(s) < 3 || s[1] != ':' || (s[2] != '\\' && s[2] != '/') {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
