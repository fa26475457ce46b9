package ldapgroups

import "strings"

// EscapeFilterValue escapes LDAP filter metacharacters from a value
// before substitution in a search filter. Backslash is escaped first so
// that the sequences produced for the other characters are not escaped
// again. Any other character passes through unchanged.
func EscapeFilterValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\5C`)
	value = strings.ReplaceAll(value, `*`, `\2A`)
	value = strings.ReplaceAll(value, `(`, `\28`)
	value = strings.ReplaceAll(value, `)`, `\29`)
	return value
}
