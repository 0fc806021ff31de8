package security

import (
	"regexp"
	"strings"
	"unicode"
)

// RedactedValue replaces the value of a sensitive key.
const RedactedValue = "********"

var sensitiveFields = map[string]bool{
	"password":      true,
	"newpassword":   true,
	"oldpassword":   true,
	"passwordsalt":  true,
	"token":         true,
	"secret":        true,
	"key":           true,
	"authorization": true,
	"auth":          true,
	"credential":    true,
	"credentials":   true,
	"apikey":        true,
	"api_key":       true,
	"access_token":  true,
	"accesstoken":   true,
	"refresh_token": true,
	"refreshtoken":  true,
	"private_key":   true,
	"privatekey":    true,
	"clientid":      true,
	"client_id":     true,
	"clientsecret":  true,
	"client_secret": true,
}

// exactOnly lists names too generic to match inside longer words:
// "monkey" is not a key and "author" is not auth.
var exactOnly = map[string]bool{
	"key":  true,
	"auth": true,
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// IsSensitiveField reports whether a field named fieldName likely holds a
// secret. Matching ignores case and understands camelCase, so "sessionToken",
// "session_token" and "SESSION-TOKEN" all match.
func IsSensitiveField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	normalized := snakeCase(fieldName)

	if sensitiveFields[lower] || sensitiveFields[normalized] {
		return true
	}

	tokens := nonAlphanumeric.Split(normalized, -1)

	for field := range sensitiveFields {
		if exactOnly[field] {
			for _, token := range tokens {
				if token == field {
					return true
				}
			}

			continue
		}

		if containsWord(normalized, field) || containsWord(lower, field) {
			return true
		}
	}

	return false
}

// Redact returns RedactedValue when key is sensitive and value otherwise.
func Redact(key string, value any) any {
	if IsSensitiveField(key) {
		return RedactedValue
	}

	return value
}

// snakeCase lowercases s, inserting '_' at camelCase boundaries:
// "APIKey" becomes "api_key".
func snakeCase(s string) string {
	var sb strings.Builder

	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteByte('_')
			}
		}

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

// containsWord reports whether word occurs in s delimited by string edges or
// non-alphanumeric bytes.
func containsWord(s, word string) bool {
	for offset := 0; offset < len(s); {
		idx := strings.Index(s[offset:], word)
		if idx == -1 {
			return false
		}

		start := offset + idx
		end := start + len(word)

		if (start == 0 || !isAlphanumeric(s[start-1])) && (end == len(s) || !isAlphanumeric(s[end])) {
			return true
		}

		offset = end
	}

	return false
}

func isAlphanumeric(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
