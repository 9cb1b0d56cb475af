package services

import (
	"fmt"
	"log"
	"time"

	"pantri/internal/models"
	"pantri/internal/repositories"

	"github.com/containerd/errdefs"
	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// invitationLinker links pending email-only invitations to a freshly
// registered account. Satisfied by HouseholdInvitationService.
type invitationLinker interface {
	LinkEmailInvitationsToUser(user *models.User) (int64, error)
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo    repositories.UserRepository
	invitations invitationLinker // optional, may be nil
	jwtSecret   []byte
	tokenDurat  time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService. The invitation linker may be nil
// when invitation reconciliation on registration is not wanted.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, invitations invitationLinker) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		invitations: invitations,
		jwtSecret:   []byte(jwtSecret),
		tokenDurat:  24 * time.Hour, // Token valid for 24 hours
	}
}

// RegisterUser registers a new user, hashes their password, and saves them to
// the database. Any pending email-only household invitations addressed to the
// new account's email are linked to it, best-effort.
func (s *AuthService) RegisterUser(user *models.User) error {
	// Check if username or email already exists
	if existingUser, err := s.userRepo.GetByUsername(user.Username); err == nil && existingUser != nil {
		return fmt.Errorf("username '%s' already taken: %w", user.Username, errdefs.ErrConflict)
	}
	if existingUser, err := s.userRepo.GetByEmail(user.Email); err == nil && existingUser != nil {
		return fmt.Errorf("email '%s' already registered: %w", user.Email, errdefs.ErrConflict)
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword) // Store the hashed password
	user.Email = models.NormalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	if s.invitations != nil {
		if linked, err := s.invitations.LinkEmailInvitationsToUser(user); err != nil {
			log.Printf("Warning: failed to link email invitations for user %s: %v", user.ID, err)
		} else if linked > 0 {
			log.Printf("Linked %d pending invitation(s) to user %s", linked, user.ID)
		}
	}
	return nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		// It's good practice not to reveal if the username exists or not for security
		return "", fmt.Errorf("invalid credentials")
	}

	// Compare the provided password with the hashed password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	// Generate JWT token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":      time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// ResolveCurrentUser validates an opaque credential and returns the acting
// account, or a not-found error when the credential does not resolve.
func (s *AuthService) ResolveCurrentUser(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("credential does not resolve to a user: %w", errdefs.ErrNotFound)
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("credential does not resolve to a user: %w", errdefs.ErrNotFound)
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("credential user %s: %w", userID, errdefs.ErrNotFound)
	}
	return user, nil
}
