package schema

import "strings"

// AliasFunc maps an attribute name to its wire name.
type AliasFunc func(string) string

// Identity returns the attribute name unchanged.
func Identity(name string) string { return name }

// ToCamel converts a snake_case attribute name to camelCase.
//
// Example: hello_world -> helloWorld, user_id -> userId, text -> text.
func ToCamel(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	b.Grow(len(name))
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(strings.ToLower(p[:1]))
		} else {
			b.WriteString(strings.ToUpper(p[:1]))
		}
		b.WriteString(p[1:])
	}
	return b.String()
}

// ToSnake converts a Go identifier to snake_case.
// Acronym runs stay together: UserID -> user_id, HTTPServer -> http_server.
func ToSnake(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	runes := []rune(name)
	for i, r := range runes {
		if isUpper(r) {
			prevLower := i > 0 && !isUpper(runes[i-1])
			nextLower := i+1 < len(runes) && !isUpper(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToScreamingSnake converts a Go identifier to SCREAMING_SNAKE_CASE.
// Used to derive default wire names for remote actions and tasks:
// UpdateName -> UPDATE_NAME.
func ToScreamingSnake(name string) string {
	return strings.ToUpper(ToSnake(name))
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
