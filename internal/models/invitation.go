package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// InvitationStatus is the lifecycle state of a household invitation.
// PENDING may transition to ACCEPTED or DECLINED; both are terminal.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationDeclined InvitationStatus = "DECLINED"
)

// HouseholdInvitation invites an account, or a bare email address that has no
// account yet, into a household. Exactly one of InvitedUserID and InvitedEmail
// is set at any time. An email-only invitation is linked in place once the
// address resolves to an account; that transition is irreversible.
type HouseholdInvitation struct {
	ID              string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	HouseholdID     string           `json:"household_id" gorm:"type:varchar(36);index"`
	InvitedUserID   *string          `json:"invited_user_id,omitempty" gorm:"type:varchar(36);index"`
	InvitedEmail    *string          `json:"invited_email,omitempty" gorm:"type:varchar(255);index"`
	InvitedByUserID string           `json:"invited_by_user_id" gorm:"type:varchar(36)"`
	ProposedRole    HouseholdRole    `json:"proposed_role" gorm:"type:varchar(16)"`
	Status          InvitationStatus `json:"status" gorm:"type:varchar(16);default:'PENDING'"`
	ExpiresAt       time.Time        `json:"expires_at"`
	gorm.Model
}

// IsEmailOnly reports whether the invitation still targets a bare email.
func (i *HouseholdInvitation) IsEmailOnly() bool {
	return i.InvitedUserID == nil && i.InvitedEmail != nil
}

// IsExpired reports whether the invitation deadline has passed at the given
// instant. Expiry is checked lazily at access time; rows are never swept.
func (i *HouseholdInvitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// NormalizeEmail lowercases and trims an address for matching and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
