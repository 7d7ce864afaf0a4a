package domain

import "strings"

// IsAffirmative reports whether a language model's one-word verdict is YES.
// It accepts "YES", "yes." and "YES, because ..."; anything else counts as NO.
func IsAffirmative(answer string) bool {
	a := strings.TrimRight(strings.ToUpper(strings.TrimSpace(answer)), ".!")
	return a == "YES" || strings.HasPrefix(a, "YES ") || strings.HasPrefix(a, "YES,")
}
