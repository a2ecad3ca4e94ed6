// Package identity holds sign-in, session and account management use cases.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	errAccountInactive    = shared.NewDomainError("ACCOUNT_INACTIVE", "Account has been deactivated")
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo       identity.UserRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewAuthService creates a new authentication service. Without a blacklist
// revocations are kept in process memory.
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	if blacklist == nil {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     log.Named("auth_service"),
		now:        time.Now,
	}
}

// SetEventPublisher sets the publisher for account events
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Login authenticates a user and returns a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	log := logger.With(ctx, s.logger)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("Login attempt for unknown email", zap.String("email", email))
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		log.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		log.Warn("Login attempt for deactivated account", zap.String("user_id", user.ID.String()))
		return nil, errAccountInactive
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		// the login itself succeeded
		log.Error("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return loginResponse(pair, user), nil
}

// Refresh exchanges a refresh token for a new pair. The presented refresh
// token is revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, req RefreshTokenRequest) (*LoginResponse, error) {
	log := logger.With(ctx, s.logger)

	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		log.Warn("Refresh token validation failed", zap.Error(err))
		return nil, TokenError(err)
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, TokenError(auth.ErrMissingUserID)
	}
	if err := s.CheckRevocation(ctx, claims); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, TokenError(auth.ErrInvalidToken)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errAccountInactive
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(s.now())); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	log.Info("Token refreshed", zap.String("user_id", user.ID.String()))
	return loginResponse(pair, user), nil
}

// CheckRevocation reports a TOKEN_REVOKED error when the token or every
// token of its user was revoked
func (s *AuthService) CheckRevocation(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("check token revocation: %w", err)
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAtTime())
		if err != nil {
			return fmt.Errorf("check user revocation: %w", err)
		}
	}
	if revoked {
		return TokenError(auth.ErrTokenRevoked)
	}
	return nil
}

// Logout revokes the access token of the session and, when given, the
// refresh token issued with it
func (s *AuthService) Logout(ctx context.Context, session SessionToken, req LogoutRequest) error {
	now := s.now()
	if err := s.blacklist.Revoke(ctx, session.JTI, session.ExpiresAt.Sub(now)); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}

	if req.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
		if err == nil && claims.UserID == session.UserID.String() {
			if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(now)); err != nil {
				return fmt.Errorf("revoke refresh token: %w", err)
			}
		}
	}

	logger.With(ctx, s.logger).Info("User logged out", zap.String("user_id", session.UserID.String()))
	return nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile changes the signed-in user's name and email
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := ensureEmailFree(ctx, s.userRepo, req.Email, &user.ID); err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(req.Email, req.FirstName, req.LastName); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword verifies the current password, stores the new one and
// revokes every token issued before the change
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	publishUserEvents(ctx, s.eventPublisher, s.logger, user)

	logger.With(ctx, s.logger).Info("User password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *AuthService) issueTokens(user *identity.User) (*auth.TokenPair, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.TokenSubject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("generate token pair: %w", err)
	}
	return pair, nil
}

func loginResponse(pair *auth.TokenPair, user *identity.User) *LoginResponse {
	return &LoginResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(user),
	}
}

// TokenError maps JWT validation failures to domain errors
func TokenError(err error) *shared.DomainError {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	case errors.Is(err, auth.ErrTokenRevoked):
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	case errors.Is(err, auth.ErrInvalidTokenType):
		return shared.NewDomainError("TOKEN_INVALID", "Wrong token type")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	}
}

func ensureEmailFree(ctx context.Context, repo identity.UserRepository, email string, excludeID *uuid.UUID) error {
	exists, err := repo.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Email is already taken by another user")
	}
	return nil
}

func publishUserEvents(ctx context.Context, publisher shared.EventPublisher, log *zap.Logger, user *identity.User) {
	events := user.GetDomainEvents()
	if publisher != nil && len(events) > 0 {
		if err := publisher.Publish(ctx, events...); err != nil {
			logger.With(ctx, log).Error("Failed to publish domain events", zap.Error(err))
		}
	}
	user.ClearDomainEvents()
}
