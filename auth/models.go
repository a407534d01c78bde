package auth

import (
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the account model. An account registers exactly one external
// identity (email) under exactly one role for its lifetime; the only
// sanctioned role transition is individual -> child through linking-code
// redemption.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Name          string     `bun:"name" json:"name,omitempty"`
	Picture       string     `bun:"picture" json:"picture,omitempty"`
	Role          Role       `bun:"role,notnull" json:"role,omitempty"`
	ParentID      *uuid.UUID `bun:"parent_id,nullzero,type:uuid" json:"parent_id,omitempty"`
	Parent        *Account   `bun:"rel:belongs-to,join:parent_id=id" json:"parent,omitempty"`
	SessionMarker string     `bun:"session_marker" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsLinked reports whether the account already has a parent reference
func (a *Account) IsLinked() bool {
	return a.ParentID != nil && *a.ParentID != uuid.Nil
}

// MatchesMarker checks a token-embedded session marker against the stored
// one. Only parent accounts carry a marker; for every other role any value
// is acceptable.
func (a *Account) MatchesMarker(marker string) bool {
	if a.Role != RoleParent {
		return true
	}
	return a.SessionMarker != "" && a.SessionMarker == marker
}

// NewAccountID derives a deterministic account ID from the email, falling
// back to a random UUID when derivation fails.
func NewAccountID(email string) uuid.UUID {
	if id, err := hashid.NewUUID(email); err == nil {
		return id
	}
	return uuid.New()
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}
	if record.ID == uuid.Nil {
		record.ID = NewAccountID(record.Email)
	}
	if record.Role == "" {
		record.Role = RoleIndividual
	}
	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}
}
