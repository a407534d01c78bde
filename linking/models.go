package linking

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// CodeLength is the number of digits in a linking code
	CodeLength = 6
	// ExpiryWindow is how long a code stays redeemable after creation
	ExpiryWindow = 24 * time.Hour
)

// LinkingCode is the linking code model. Rows are append-then-consume: a code
// is created unconsumed, consumed at most once, and kept forever once
// consumed. Expired unconsumed rows are purged when their parent mints again.
type LinkingCode struct {
	bun.BaseModel `bun:"table:linking_codes,alias:lc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ParentID      uuid.UUID  `bun:"parent_id,notnull,type:uuid" json:"parent_id,omitempty"`
	Code          string     `bun:"code,notnull" json:"code,omitempty"`
	Consumed      bool       `bun:"is_consumed" json:"is_consumed,omitempty"`
	ConsumedBy    *uuid.UUID `bun:"consumed_by,nullzero,type:uuid" json:"consumed_by,omitempty"`
	ConsumedAt    *time.Time `bun:"consumed_at,nullzero" json:"consumed_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
}

// Expired reports whether the code is past its expiry at the given instant
func (c *LinkingCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Active reports whether the code is redeemable at the given instant
func (c *LinkingCode) Active(now time.Time) bool {
	return !c.Consumed && !c.Expired(now)
}
