package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ambulancia-platform/ms-auth/internal/authz"
	"github.com/ambulancia-platform/ms-auth/internal/config"
	"github.com/ambulancia-platform/ms-auth/internal/db/models"
	"github.com/ambulancia-platform/ms-auth/internal/phone"
	"github.com/ambulancia-platform/ms-auth/internal/randstr"
	"github.com/ambulancia-platform/ms-auth/internal/token"
)

const (
	// TokenLabel is the display name given to every issued token.
	TokenLabel = "ambulancia-token"

	// TokenType is the authentication scheme of issued tokens.
	TokenType = "Bearer"

	defaultPerPage = 10
)

// Service composes the credential store, the authorization engine and the
// token ledger into the platform's authentication operations.
type Service struct {
	db     *gorm.DB
	cfg    config.Auth
	ledger *token.Ledger
	engine *authz.Engine
}

// NewService creates the auth service for one guard namespace.
func NewService(db *gorm.DB, cfg config.Auth, opts ...token.Option) *Service {
	return &Service{
		db:     db,
		cfg:    cfg,
		ledger: token.NewLedger(db, time.Duration(cfg.TokenTTLHours)*time.Hour, opts...),
		engine: authz.NewEngine(db, cfg.Guard),
	}
}

// Engine exposes the authorization engine, pinned to the service's guard.
func (s *Service) Engine() *authz.Engine {
	return s.engine
}

// Ledger exposes the token ledger.
func (s *Service) Ledger() *token.Ledger {
	return s.ledger
}

// Login authenticates with email and password and issues a bearer token
// scoped to the user's current effective permissions.
func (s *Service) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var user models.User

	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	if !user.IsActive() {
		return nil, ErrUserInactive
	}

	return s.issueFor(&user, false, false)
}

// LoginWhatsApp authenticates by phone number. Unknown numbers provision a
// fresh account with an unguessable password, a placeholder email and the
// bootstrap role, flagged as a new account needing setup. The operation is
// idempotent per physical number: every spelling of the same number
// normalizes to one canonical key, so repeated calls never create duplicate
// accounts.
func (s *Service) LoginWhatsApp(rawPhone string) (*AuthResult, error) {
	canonical := phone.Normalize(rawPhone)

	var user models.User

	err := s.db.Where("phone = ?", canonical).First(&user).Error
	if err == nil {
		if !user.IsActive() {
			return nil, ErrUserInactive
		}

		return s.issueFor(&user, false, false)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	provisioned, err := s.provisionPhoneUser(canonical)
	if err != nil {
		return nil, err
	}

	return s.issueFor(provisioned, true, true)
}

// provisionPhoneUser creates the account for an unknown phone number and
// assigns the bootstrap role, in one transaction.
func (s *Service) provisionPhoneUser(canonical string) (*models.User, error) {
	user := models.User{
		Name:     "Paramédico " + canonical,
		Email:    fmt.Sprintf("whatsapp_%d@%s", time.Now().UnixNano(), s.cfg.PlaceholderEmailDomain),
		Phone:    &canonical,
		Password: models.HashPassword(randstr.Password()),
		Status:   models.UserStatusActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		return authz.NewEngine(tx, s.engine.Guard()).
			AssignRoleByName(user.ID, s.cfg.BootstrapRole)
	})
	if err == nil {
		log.Info().Uint64("user_id", user.ID).Msg("provisioned account via phone bootstrap")

		return &user, nil
	}

	// A concurrent bootstrap for the same number may have won the unique
	// phone index. Re-read before giving up.
	var existing models.User
	if lookupErr := s.db.Where("phone = ?", canonical).First(&existing).Error; lookupErr == nil {
		if !existing.IsActive() {
			return nil, ErrUserInactive
		}

		return &existing, nil
	}

	return nil, err
}

// Logout revokes exactly the token that authenticated the current request,
// leaving the user's other sessions untouched.
func (s *Service) Logout(record *models.AccessToken) error {
	return s.ledger.Revoke(record)
}

// Refresh revokes the presenting token and issues a new one for the same
// identity. The returned plaintext always differs from the old one, and the
// old token fails validation from here on.
func (s *Service) Refresh(record *models.AccessToken) (*AuthResult, error) {
	if err := s.ledger.Revoke(record); err != nil {
		return nil, err
	}

	var user models.User

	err := s.db.First(&user, record.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.IsActive() {
		return nil, ErrUserInactive
	}

	return s.issueFor(&user, false, false)
}

// ValidateToken checks a presented compound token value and reports a strict
// valid/invalid decision with a diagnostic message. Negative outcomes are
// results, not errors; unexpected store faults are logged and collapse to
// invalid so the caller never sees a partial answer.
func (s *Service) ValidateToken(presented string) ValidationResult {
	record, err := s.ledger.Validate(presented)

	switch {
	case errors.Is(err, token.ErrMalformed):
		return ValidationResult{Valid: false, Message: "token is malformed"}
	case errors.Is(err, token.ErrInvalid):
		return ValidationResult{Valid: false, Message: "token is revoked, expired or unknown"}
	case err != nil:
		log.Error().Err(err).Msg("token validation failed")

		return ValidationResult{Valid: false, Message: "token validation failed"}
	}

	return ValidationResult{
		Valid:     true,
		UserID:    record.UserID,
		ExpiresAt: record.ExpiresAt,
		Message:   "token is valid",
	}
}

// issueFor mints a token scoped to the user's current effective permissions
// and assembles the full auth result.
func (s *Service) issueFor(user *models.User, newAccount, requiresSetup bool) (*AuthResult, error) {
	abilities, err := s.engine.EffectivePermissions(user.ID)
	if err != nil {
		return nil, err
	}

	plaintext, record, err := s.ledger.Issue(user.ID, TokenLabel, abilities)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileOf(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token:         plaintext,
		TokenType:     TokenType,
		ExpiresAt:     *record.ExpiresAt,
		User:          *profile,
		NewAccount:    newAccount,
		RequiresSetup: requiresSetup,
	}, nil
}

// profileOf resolves the user's roles and effective permissions into a Profile.
func (s *Service) profileOf(user *models.User) (*Profile, error) {
	roles, err := s.engine.RolesOf(user.ID)
	if err != nil {
		return nil, err
	}

	permissions, err := s.engine.EffectivePermissionModels(user.ID)
	if err != nil {
		return nil, err
	}

	profile := Profile{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		Status:      string(user.Status),
		Roles:       make([]RoleInfo, 0, len(roles)),
		Permissions: make([]PermissionInfo, 0, len(permissions)),
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}

	for _, role := range roles {
		profile.Roles = append(profile.Roles, RoleInfo{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
		})
	}

	for _, permission := range permissions {
		profile.Permissions = append(profile.Permissions, PermissionInfo{
			ID:          permission.ID,
			Name:        permission.Name,
			Description: permission.Description,
		})
	}

	return &profile, nil
}

// GetUser returns the resolved profile of one user.
func (s *Service) GetUser(userID uint64) (*Profile, error) {
	user, err := s.userByID(userID)
	if err != nil {
		return nil, err
	}

	return s.profileOf(user)
}

// CreateUser provisions an account administratively. Email and canonical
// phone must be unused; the requested roles must exist under the guard.
func (s *Service) CreateUser(input CreateUserInput) (*Profile, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if taken, err := s.emailTaken(email, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailExists
	}

	user := models.User{
		Name:     input.Name,
		Email:    email,
		Password: models.HashPassword(input.Password),
		Status:   models.UserStatusActive,
	}

	if input.Phone != "" {
		canonical := phone.Normalize(input.Phone)

		if taken, err := s.phoneTaken(canonical, 0); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrPhoneExists
		}

		user.Phone = &canonical
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		engine := authz.NewEngine(tx, s.engine.Guard())

		for _, roleID := range input.RoleIDs {
			if err := engine.AssignRole(user.ID, roleID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.profileOf(&user)
}

// UpdateUser applies the given profile changes. Setting the status to
// inactive also revokes every outstanding token of the account.
func (s *Service) UpdateUser(userID uint64, input UpdateUserInput) (*Profile, error) {
	user, err := s.userByID(userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}

	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))

		if taken, err := s.emailTaken(email, user.ID); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrEmailExists
		}

		user.Email = email
	}

	if input.Phone != nil {
		canonical := phone.Normalize(*input.Phone)

		if taken, err := s.phoneTaken(canonical, user.ID); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrPhoneExists
		}

		user.Phone = &canonical
	}

	deactivated := false

	if input.Status != nil {
		status := models.UserStatus(*input.Status)
		deactivated = status == models.UserStatusInactive && user.Status != status
		user.Status = status
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if deactivated {
		if err := s.ledger.RevokeAllForUser(user.ID); err != nil {
			return nil, err
		}
	}

	return s.profileOf(user)
}

// DeleteUser removes an account together with its tokens and role
// assignments. The referential cleanup is part of the deletion, not an
// afterthought. Administrators can not delete themselves.
func (s *Service) DeleteUser(actorID, userID uint64) error {
	if actorID == userID {
		return ErrSelfDelete
	}

	user, err := s.userByID(userID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).
			Delete(&models.RoleAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete role assignments: %w", err)
		}

		if err := tx.Where("user_id = ?", user.ID).
			Delete(&models.AccessToken{}).Error; err != nil {
			return fmt.Errorf("failed to delete tokens: %w", err)
		}

		if err := tx.Delete(user).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		return nil
	})
}

// ListUsers returns one page of resolved profiles.
func (s *Service) ListUsers(page, perPage int) ([]Profile, Page, error) {
	if page < 1 {
		page = 1
	}

	if perPage < 1 {
		perPage = defaultPerPage
	}

	var total int64

	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, Page{}, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User

	err := s.db.Order("id").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&users).Error
	if err != nil {
		return nil, Page{}, fmt.Errorf("failed to list users: %w", err)
	}

	profiles := make([]Profile, 0, len(users))

	for i := range users {
		profile, err := s.profileOf(&users[i])
		if err != nil {
			return nil, Page{}, err
		}

		profiles = append(profiles, *profile)
	}

	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	return profiles, Page{
		Total:       total,
		PerPage:     perPage,
		CurrentPage: page,
		LastPage:    lastPage,
	}, nil
}

// AssignRole attaches a role to a user and returns the refreshed profile.
func (s *Service) AssignRole(userID uint64, roleID uint) (*Profile, error) {
	if err := s.engine.AssignRole(userID, roleID); err != nil {
		return nil, err
	}

	return s.GetUser(userID)
}

// RemoveRole detaches a role from a user and returns the refreshed profile.
// The change is visible to the very next authorization decision.
func (s *Service) RemoveRole(userID uint64, roleID uint) (*Profile, error) {
	if err := s.engine.RemoveRole(userID, roleID); err != nil {
		return nil, err
	}

	return s.GetUser(userID)
}

func (s *Service) userByID(userID uint64) (*models.User, error) {
	var user models.User

	err := s.db.First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

func (s *Service) emailTaken(email string, excludeID uint64) (bool, error) {
	var count int64

	err := s.db.Model(&models.User{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	return count > 0, nil
}

func (s *Service) phoneTaken(canonical string, excludeID uint64) (bool, error) {
	var count int64

	err := s.db.Model(&models.User{}).
		Where("phone = ? AND id <> ?", canonical, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check phone: %w", err)
	}

	return count > 0, nil
}
