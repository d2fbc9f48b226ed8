// Package idempotency derives deterministic keys for operations that must
// apply at most once. The same scope and parameters always produce the same
// key, so a unique index on the stored key turns command redelivery into a
// detectable conflict instead of a double-application.
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Scope namespaces keys by operation kind.
type Scope string

const (
	ScopeBillingPeriodTransition Scope = "billing_period_transition"
	ScopeCheckoutConfirmation    Scope = "checkout_confirmation"
	ScopeUsageEvent              Scope = "usage_event"
)

// Generator produces idempotency keys.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateKey builds a key from the scope and a parameter map. Parameters
// are serialized in sorted key order so map iteration order never changes
// the result.
func (g *Generator) GenerateKey(scope Scope, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, params[k]))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
