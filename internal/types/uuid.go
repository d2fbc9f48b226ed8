package types

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes for entity IDs. Keep these short and stable: they end up in
// customer-facing API responses and foreign keys.
const (
	UUID_PREFIX_LEDGER_ACCOUNT            = "la"
	UUID_PREFIX_LEDGER_TRANSACTION        = "ltxn"
	UUID_PREFIX_LEDGER_ENTRY              = "le"
	UUID_PREFIX_USAGE_CREDIT              = "uc"
	UUID_PREFIX_USAGE_METER               = "um"
	UUID_PREFIX_SUBSCRIPTION              = "sub"
	UUID_PREFIX_SUBSCRIPTION_FEATURE_ITEM = "sfi"
	UUID_PREFIX_BILLING_PERIOD            = "bp"
	UUID_PREFIX_CUSTOMER                  = "cust"
	UUID_PREFIX_CHECKOUT_SESSION          = "cs"
	UUID_PREFIX_FEE_CALCULATION           = "fee"
	UUID_PREFIX_REQUEST                   = "req"
)

// GenerateUUID returns a k-sortable unique identifier (lowercase ULID).
func GenerateUUID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

// GenerateUUIDWithPrefix returns a ULID prefixed with the entity type,
// e.g. "uc_01hgw2c8...". All persisted entities use this format.
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}
