package tracing

import (
	"strings"
)

const (
	// DefaultMaxLength default attribute length
	DefaultMaxLength = 200
	// MaxSQLLength SQL statements
	MaxSQLLength = 500
	// MaxRedisLength Redis keys
	MaxRedisLength = 100
	// MaxObjectKeyLength MinIO object keys
	MaxObjectKeyLength = 150
	// MaxResumeLength resume text excerpts
	MaxResumeLength = 150
)

// maskPIILookup lists attribute-name fragments whose values are always masked.
var maskPIILookup = map[string]bool{
	"email":    true,
	"phone":    true,
	"password": true,
	"linkedin": true,
	"github":   true,
	"address":  true,
	"location": true,
	"name":     true,
	"salary":   true,
	"secret":   true,
	"token":    true,
	"api_key":  true,
}

// SafeAttributeValue masks values of PII-named attributes and truncates everything else.
func SafeAttributeValue(name string, value string, maxLength int) string {
	lowerName := strings.ToLower(name)
	for keyword := range maskPIILookup {
		if strings.Contains(lowerName, keyword) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII keeps a couple of leading and trailing runes and stars the rest.
func MaskPII(value string) string {
	if value == "" {
		return ""
	}

	runes := []rune(value)
	length := len(runes)

	if length <= 1 {
		return "*"
	}
	// "Al" -> "A*", "Bob" -> "B*b"
	if length <= 4 {
		if length == 2 {
			return string(runes[0:1]) + "*"
		}
		return string(runes[0:1]) + strings.Repeat("*", length-2) + string(runes[length-1:])
	}

	// "jane@example.com" -> "ja************om"
	return string(runes[0:2]) + strings.Repeat("*", length-4) + string(runes[length-2:])
}

// TruncateString keeps the head and tail of s joined by "..." when it exceeds maxLength runes.
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

// SafeSQL truncates a SQL statement for span attributes.
func SafeSQL(sql string) string {
	return TruncateString(sql, MaxSQLLength)
}

// SafeRedisKey truncates a Redis key.
func SafeRedisKey(key string) string {
	return TruncateString(key, MaxRedisLength)
}

// SafeObjectKey truncates a MinIO object key.
func SafeObjectKey(key string) string {
	return TruncateString(key, MaxObjectKeyLength)
}

// SafeResumeContent truncates resume text.
func SafeResumeContent(content string) string {
	return TruncateString(content, MaxResumeLength)
}
