package logging

import "strings"

// Redacted replaces the value of sensitive fields.
const Redacted = "[redacted]"

var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"token":         {},
	"secret":        {},
	"authorization": {},
	"cookie":        {},
}

// IsSensitiveKey reports whether values logged under key must be masked.
func IsSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// RedactArgs returns key/value args with sensitive values masked. args is
// copied only when something needs masking.
func RedactArgs(args []any) []any {
	var out []any
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || !IsSensitiveKey(key) {
			continue
		}
		if out == nil {
			out = append([]any(nil), args...)
		}
		out[i+1] = Redacted
	}
	if out == nil {
		return args
	}
	return out
}

// RedactFields returns fields with sensitive values masked.
func RedactFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if IsSensitiveKey(key) {
			value = Redacted
		}
		out[key] = value
	}
	return out
}
