package logging

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"mercator-hq/governor/pkg/config"
)

// Redactor redacts PII (Personally Identifiable Information) from log values.
// Patterns run in a fixed order so output is deterministic.
type Redactor struct {
	patterns []redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Common PII pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
	PatternEmail       = "email"
	PatternCreditCard  = "credit_card"
	PatternSSN         = "ssn"
	PatternPhone       = "phone"
	PatternIPv4        = "ipv4"
)

var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{PatternAPIKey, `(sk-[a-zA-Z0-9]+|api[-_]?key[-_:]\s*[a-zA-Z0-9]+)`, "sk-***"},
	{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternPassword, `(password|passwd|pwd)[:=]\s*[^\s]+`, "$1: ***"},
	{PatternEmail, `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "***@***"},
	{PatternCreditCard, `\b(?:\d[ -]?){12,15}\d\b`, "****-****-****-****"},
	{PatternSSN, `\b\d{3}-\d{2}-\d{4}\b`, "***-**-****"},
	{PatternPhone, `\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`, "***-***-****"},
	{PatternIPv4, `\b(?:\d{1,3}\.){3}\d{1,3}\b`, "*.*.*.*"},
}

// sensitiveKeys mark attributes whose whole value is masked.
var sensitiveKeys = []string{
	"password", "passwd", "secret", "token", "api_key", "apikey",
	"authorization", "private_key",
}

// exemptKeys are identifiers this service generates itself.
var exemptKeys = map[string]bool{
	"request_id": true,
	"session_id": true,
	"trace_id":   true,
	"span_id":    true,
	"component":  true,
}

// NewRedactor creates a Redactor with the default patterns followed by
// custom ones. Invalid custom patterns are reported as an error.
func NewRedactor(custom []config.RedactPattern) (*Redactor, error) {
	r := &Redactor{}
	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p.Name, err)
		}
		r.patterns = append(r.patterns, redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r, nil
}

// RedactString redacts PII from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactAttr returns attr with PII removed. Groups are redacted recursively.
func (r *Redactor) RedactAttr(attr slog.Attr) slog.Attr {
	if exemptKeys[attr.Key] {
		return attr
	}

	v := attr.Value.Resolve()
	switch {
	case isSensitiveKey(attr.Key):
		return slog.String(attr.Key, maskValue(v))
	case v.Kind() == slog.KindString:
		return slog.String(attr.Key, r.RedactString(v.String()))
	case v.Kind() == slog.KindGroup:
		group := v.Group()
		redacted := make([]any, len(group))
		for i, a := range group {
			redacted[i] = r.RedactAttr(a)
		}
		return slog.Group(attr.Key, redacted...)
	case v.Kind() == slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.String(attr.Key, r.RedactString(err.Error()))
		}
	}
	return slog.Attr{Key: attr.Key, Value: v}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// maskValue keeps a four character prefix of longer strings for debugging.
func maskValue(v slog.Value) string {
	if v.Kind() != slog.KindString {
		return "***"
	}
	s := v.String()
	if len(s) <= 4 {
		return "***"
	}
	return s[:4] + "***"
}
