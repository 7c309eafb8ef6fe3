package databind

import "strings"

// NamingStrategy transforms a key name between its wire spelling and the
// spelling the binder uses. Applied to KEY text on decode and to keys on
// encode.
type NamingStrategy func(string) string

// NamingIdentity leaves keys untouched.
func NamingIdentity(name string) string { return name }

// NamingSnakeCase rewrites keys as lower_snake_case.
func NamingSnakeCase(name string) string {
	return strings.Join(splitWords(name), "_")
}

// NamingKebabCase rewrites keys as lower-kebab-case.
func NamingKebabCase(name string) string {
	return strings.Join(splitWords(name), "-")
}

// NamingUpperSnake rewrites keys as UPPER_SNAKE_CASE.
func NamingUpperSnake(name string) string {
	return strings.ToUpper(strings.Join(splitWords(name), "_"))
}

// NamingCamelCase rewrites keys as lowerCamelCase.
func NamingCamelCase(name string) string {
	words := splitWords(name)
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(w)
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}

// splitWords breaks a key into lowercase words on delimiters and case
// boundaries. "userName", "user_name", "user-name" and "User Name" all
// split into ["user", "name"].
func splitWords(name string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_' || c == '-' || c == '.' || c == ' ':
			flush()
		case c >= 'A' && c <= 'Z':
			if i > 0 && name[i-1] >= 'a' && name[i-1] <= 'z' {
				flush()
			}
			cur.WriteByte(c)
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	if len(words) == 0 {
		return []string{""}
	}
	return words
}
