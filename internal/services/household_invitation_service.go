package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pantri/internal/models"
	"pantri/internal/repositories"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
)

// defaultInvitationTTL is how long a freshly sent invitation stays acceptable.
const defaultInvitationTTL = 7 * 24 * time.Hour

// SendInvitationInput carries the target of a new invitation. Either a user id
// or an email address must be given; an email that resolves to no account
// produces an email-only invitation.
type SendInvitationInput struct {
	InvitedUserID string
	InvitedEmail  string
	ProposedRole  models.HouseholdRole
}

// HouseholdInvitationService handles the invitation state machine:
// PENDING -> ACCEPTED | DECLINED (terminal), PENDING -> cancelled (deleted).
// Expiry is enforced lazily on accept; no background sweep exists.
type HouseholdInvitationService struct {
	identity    IdentityResolver
	invitations repositories.HouseholdInvitationRepository
	members     repositories.HouseholdMemberRepository
	households  repositories.HouseholdRepository
	users       repositories.UserRepository
	events      EventPublisher // optional, may be nil
}

// NewHouseholdInvitationService creates a new HouseholdInvitationService.
func NewHouseholdInvitationService(identity IdentityResolver, invitations repositories.HouseholdInvitationRepository, members repositories.HouseholdMemberRepository, households repositories.HouseholdRepository, users repositories.UserRepository, events EventPublisher) *HouseholdInvitationService {
	return &HouseholdInvitationService{
		identity:    identity,
		invitations: invitations,
		members:     members,
		households:  households,
		users:       users,
		events:      events,
	}
}

func (s *HouseholdInvitationService) publish(routingKey string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.events.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

// SendInvitation invites a user or a bare email address into the household.
// The caller must hold the ADMIN role or better.
func (s *HouseholdInvitationService) SendInvitation(actorID, householdID string, input SendInvitationInput) (*models.HouseholdInvitation, error) {
	if input.ProposedRole == models.RoleOwner {
		return nil, fmt.Errorf("an invitation cannot propose the OWNER role: %w", errdefs.ErrInvalidArgument)
	}
	if !input.ProposedRole.Valid() {
		return nil, fmt.Errorf("unknown household role '%s': %w", input.ProposedRole, errdefs.ErrInvalidArgument)
	}
	if input.InvitedUserID == "" && models.NormalizeEmail(input.InvitedEmail) == "" {
		return nil, fmt.Errorf("an invited user id or email is required: %w", errdefs.ErrInvalidArgument)
	}

	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	household, err := s.households.GetByID(householdID)
	if err != nil {
		return nil, err
	}
	caller, err := s.members.GetByHouseholdAndUser(householdID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("household %s: %w", householdID, errdefs.ErrNotFound)
	}
	if !caller.Role.AtLeast(models.RoleAdmin) {
		return nil, fmt.Errorf("sending invitations requires the ADMIN role: %w", errdefs.ErrPermissionDenied)
	}

	// Resolve the target. An email that matches no account yields an
	// email-only invitation instead of failing, so not-yet-registered people
	// can be invited.
	var target *models.User
	email := models.NormalizeEmail(input.InvitedEmail)
	if input.InvitedUserID != "" {
		target, err = s.users.GetByID(input.InvitedUserID)
		if err != nil {
			return nil, err
		}
		email = models.NormalizeEmail(target.Email)
	} else if found, err := s.users.GetByEmail(email); err == nil && found != nil {
		target = found
	}

	if target != nil && target.ID == actor.ID {
		return nil, fmt.Errorf("you cannot invite yourself: %w", errdefs.ErrInvalidArgument)
	}
	if target == nil && email == models.NormalizeEmail(actor.Email) {
		return nil, fmt.Errorf("you cannot invite yourself: %w", errdefs.ErrInvalidArgument)
	}

	if target != nil {
		isMember, err := s.members.ExistsByHouseholdAndUser(householdID, target.ID)
		if err != nil {
			return nil, err
		}
		if isMember {
			return nil, fmt.Errorf("user %s is already a member of household %s: %w", target.ID, householdID, errdefs.ErrConflict)
		}
		pending, err := s.invitations.HasPendingByHouseholdAndUser(householdID, target.ID)
		if err != nil {
			return nil, err
		}
		if pending {
			return nil, fmt.Errorf("user %s already has a pending invitation to household %s: %w", target.ID, householdID, errdefs.ErrConflict)
		}
	}
	// The effective email may still collide with a pending email-only
	// invitation, for account targets too.
	pendingByEmail, err := s.invitations.HasPendingByHouseholdAndEmail(householdID, email)
	if err != nil {
		return nil, err
	}
	if pendingByEmail {
		return nil, fmt.Errorf("%s already has a pending invitation to household %s: %w", email, householdID, errdefs.ErrConflict)
	}

	invitation := &models.HouseholdInvitation{
		ID:              uuid.New().String(),
		HouseholdID:     householdID,
		InvitedByUserID: actor.ID,
		ProposedRole:    input.ProposedRole,
		Status:          models.InvitationPending,
		ExpiresAt:       time.Now().Add(defaultInvitationTTL),
	}
	if target != nil {
		userID := target.ID
		invitation.InvitedUserID = &userID
	} else {
		invitation.InvitedEmail = &email
	}
	if err := s.invitations.Create(invitation); err != nil {
		return nil, err
	}

	s.publish("invitation.sent", map[string]interface{}{
		"invitationID":  invitation.ID,
		"householdID":   householdID,
		"householdName": household.Name,
		"email":         email,
		"proposedRole":  string(input.ProposedRole),
		"invitedBy":     actor.ID,
	})
	return invitation, nil
}

// AcceptInvitation accepts a pending invitation addressed to the actor and
// creates the corresponding membership at the proposed role. An email-only
// invitation whose address matches the actor's email is linked to the actor
// first; that link persists even if the acceptance then fails.
func (s *HouseholdInvitationService) AcceptInvitation(actorID, invitationID string) (*models.HouseholdMember, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	invitation, err := s.invitations.GetByID(invitationID)
	if err != nil {
		return nil, err
	}

	if invitation.Status != models.InvitationPending {
		return nil, fmt.Errorf("invitation %s was already processed: %w", invitationID, errdefs.ErrFailedPrecondition)
	}
	if invitation.IsExpired(time.Now()) {
		return nil, fmt.Errorf("invitation %s has expired: %w", invitationID, errdefs.ErrFailedPrecondition)
	}

	if err := s.claimInvitation(invitation, actor); err != nil {
		return nil, err
	}

	alreadyMember, err := s.members.ExistsByHouseholdAndUser(invitation.HouseholdID, actor.ID)
	if err != nil {
		return nil, err
	}
	if alreadyMember {
		return nil, fmt.Errorf("user %s is already a member of household %s: %w", actor.ID, invitation.HouseholdID, errdefs.ErrConflict)
	}

	invitation.Status = models.InvitationAccepted
	if err := s.invitations.Save(invitation); err != nil {
		return nil, err
	}

	member := &models.HouseholdMember{
		ID:          uuid.New().String(),
		HouseholdID: invitation.HouseholdID,
		UserID:      actor.ID,
		Role:        invitation.ProposedRole,
	}
	if err := s.members.Create(member); err != nil {
		return nil, err
	}

	s.publish("invitation.accepted", map[string]interface{}{
		"invitationID": invitation.ID,
		"householdID":  invitation.HouseholdID,
		"userID":       actor.ID,
		"role":         string(invitation.ProposedRole),
	})
	return member, nil
}

// claimInvitation verifies the actor is the addressee. For an email-only
// invitation a matching normalized email claims the row in place: the invited
// user is set, the invited email cleared, and the change persisted.
func (s *HouseholdInvitationService) claimInvitation(invitation *models.HouseholdInvitation, actor *models.User) error {
	if invitation.InvitedUserID != nil {
		if *invitation.InvitedUserID != actor.ID {
			return fmt.Errorf("user %s is not the invited user: %w", actor.ID, errdefs.ErrPermissionDenied)
		}
		return nil
	}
	if invitation.InvitedEmail == nil || models.NormalizeEmail(actor.Email) != *invitation.InvitedEmail {
		return fmt.Errorf("user %s is not the invited user: %w", actor.ID, errdefs.ErrPermissionDenied)
	}
	userID := actor.ID
	invitation.InvitedUserID = &userID
	invitation.InvitedEmail = nil
	return s.invitations.Save(invitation)
}

// DeclineInvitation declines a pending invitation addressed to the actor.
func (s *HouseholdInvitationService) DeclineInvitation(actorID, invitationID string) error {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return err
	}
	invitation, err := s.invitations.GetByID(invitationID)
	if err != nil {
		return err
	}
	if invitation.Status != models.InvitationPending {
		return fmt.Errorf("invitation %s was already processed: %w", invitationID, errdefs.ErrFailedPrecondition)
	}
	if err := s.claimInvitation(invitation, actor); err != nil {
		return err
	}

	invitation.Status = models.InvitationDeclined
	return s.invitations.Save(invitation)
}

// CancelInvitation withdraws a pending invitation. The original inviter or a
// household ADMIN/OWNER may cancel; the row is deleted, not marked.
func (s *HouseholdInvitationService) CancelInvitation(actorID, invitationID string) error {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return err
	}
	invitation, err := s.invitations.GetByID(invitationID)
	if err != nil {
		return err
	}
	if invitation.Status != models.InvitationPending {
		return fmt.Errorf("invitation %s was already processed: %w", invitationID, errdefs.ErrFailedPrecondition)
	}

	if invitation.InvitedByUserID != actor.ID {
		membership, err := s.members.GetByHouseholdAndUser(invitation.HouseholdID, actor.ID)
		if err != nil || !membership.Role.AtLeast(models.RoleAdmin) {
			return fmt.Errorf("cancelling requires the inviter or a household ADMIN: %w", errdefs.ErrPermissionDenied)
		}
	}

	return s.invitations.Delete(invitation.ID)
}

// GetMyInvitations lists the actor's invitations. Pending email-only
// invitations matching the actor's email are first linked to the actor in
// bulk, so stale email invitations migrate on the first listing after
// registration. The reconciliation is idempotent and best-effort.
func (s *HouseholdInvitationService) GetMyInvitations(actorID string) ([]models.HouseholdInvitation, error) {
	actor, err := s.identity.Resolve(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Email != "" {
		if _, err := s.invitations.LinkEmailInvitationsToUser(actor.ID, models.NormalizeEmail(actor.Email)); err != nil {
			log.Printf("Warning: failed to link email invitations for user %s: %v", actor.ID, err)
		}
	}
	return s.invitations.FindByInvitedUserID(actor.ID)
}

// LinkEmailInvitationsToUser links all pending email-only invitations
// addressed to the user's email and returns the affected-row count. A nil
// user or a user without an email is a no-op.
func (s *HouseholdInvitationService) LinkEmailInvitationsToUser(user *models.User) (int64, error) {
	if user == nil || user.Email == "" {
		return 0, nil
	}
	return s.invitations.LinkEmailInvitationsToUser(user.ID, models.NormalizeEmail(user.Email))
}
