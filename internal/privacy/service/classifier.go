package service

import (
	"strings"
)

// defaultSensitiveTokens is the built-in dictionary of sensitive field-name
// tokens, spanning identity, contact, financial, and health categories.
// Matching is deliberately over-inclusive: "user_email_address" matches
// "email". Callers extend the set at construction; the defaults themselves
// are never altered.
var defaultSensitiveTokens = []string{
	// Identity
	"name", "ssn", "social_security", "passport", "license",
	"date_of_birth", "birthdate", "dob", "national_id",
	// Contact
	"email", "phone", "mobile", "address", "street", "city", "zip", "postal",
	// Financial
	"card", "cvv", "iban", "account_number", "routing", "salary", "income", "tax_id",
	// Health
	"health", "medical", "diagnosis", "prescription", "insurance",
	// Credentials (always sensitive in logs regardless of category)
	"password", "secret", "token", "api_key", "credential", "auth",
}

// FieldClassifier flags structured keys whose names look sensitive.
// Immutable after construction and safe for concurrent use.
type FieldClassifier struct {
	tokens []string
}

// NewFieldClassifier builds a classifier from the built-in dictionary plus
// any extra tokens. Extra tokens are lowercased; empty entries are dropped.
func NewFieldClassifier(extraTokens ...string) *FieldClassifier {
	tokens := make([]string, 0, len(defaultSensitiveTokens)+len(extraTokens))
	tokens = append(tokens, defaultSensitiveTokens...)
	for _, token := range extraTokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return &FieldClassifier{tokens: tokens}
}

// IsSensitive reports whether the key name matches any token exactly or by
// substring, case-insensitively.
func (c *FieldClassifier) IsSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, token := range c.tokens {
		if key == token || strings.Contains(key, token) {
			return true
		}
	}
	return false
}
