package core

import "strings"

// CleanString trims `s`. With `upper` set, it also upper-cases it the way roster names are stored.
func CleanString(s string, upper ...bool) string {
	s = strings.TrimSpace(s)
	if len(upper) > 0 && upper[0] {
		s = strings.ToUpper(s)
	}
	return s
}
