package identity

import (
	"context"
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

// UserService handles account administration
type UserService struct {
	userRepo       identity.UserRepository
	blacklist      auth.TokenBlacklist
	revokeFor      func() time.Duration
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new UserService. Revocations triggered by
// deactivation, demotion or deletion last as long as a refresh token.
func NewUserService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	log *zap.Logger,
) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	if blacklist == nil {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		revokeFor: jwtService.RefreshTokenExpiration,
		logger:    log.Named("user_service"),
	}
}

// SetEventPublisher sets the publisher for account events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates an account
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if err := ensureEmailFree(ctx, s.userRepo, req.Email, nil); err != nil {
		return nil, err
	}

	user, err := identity.NewUser(req.Email, req.Password, req.FirstName, req.LastName, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}
	if req.IsActive != nil && !*req.IsActive {
		user.Deactivate()
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	publishUserEvents(ctx, s.eventPublisher, s.logger, user)

	logger.With(ctx, s.logger).Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID retrieves an account
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List retrieves a page of accounts, searching name and email
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	users, total, err := s.userRepo.FindAll(ctx, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out, total, nil
}

// Update edits an account. Deactivating or demoting a user revokes the
// tokens they hold; admins cannot deactivate or demote themselves.
func (s *UserService) Update(ctx context.Context, actorID, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureEmailFree(ctx, s.userRepo, req.Email, &user.ID); err != nil {
		return nil, err
	}

	wasActive, oldRole := user.IsActive, user.Role
	if err := user.UpdateProfile(req.Email, req.FirstName, req.LastName); err != nil {
		return nil, err
	}
	if req.Role != "" {
		if err := user.SetRole(identity.Role(req.Role)); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			user.Activate()
		} else {
			user.Deactivate()
		}
	}

	lostAccess := (wasActive && !user.IsActive) || (oldRole == identity.RoleAdmin && user.Role != identity.RoleAdmin)
	if lostAccess && id == actorID {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "You cannot deactivate or demote your own account")
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if lostAccess {
		if err := s.revoke(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	logger.With(ctx, s.logger).Info("User updated",
		zap.String("user_id", user.ID.String()),
		zap.String("actor_id", actorID.String()),
	)
	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete removes an account and revokes its tokens
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if id == actorID {
		return shared.NewDomainError("VALIDATION_ERROR", "You cannot delete your own account")
	}
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.revoke(ctx, id); err != nil {
		return err
	}

	logger.With(ctx, s.logger).Info("User deleted",
		zap.String("user_id", id.String()),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

// SeedAdminInput describes the first administrator account
type SeedAdminInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SeedAdmin creates the administrator when no user exists yet. It reports
// whether an account was created.
func (s *UserService) SeedAdmin(ctx context.Context, in SeedAdminInput) (bool, error) {
	log := logger.With(ctx, s.logger)
	if in.Email == "" || in.Password == "" {
		log.Debug("Admin seed skipped, no credentials configured")
		return false, nil
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	first, last := in.FirstName, in.LastName
	if first == "" {
		first = "Admin"
	}
	if last == "" {
		last = "User"
	}
	user, err := identity.NewUser(in.Email, in.Password, first, last, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return false, err
	}
	publishUserEvents(ctx, s.eventPublisher, s.logger, user)

	log.Info("Seeded admin account", zap.String("email", user.Email))
	return true, nil
}

func (s *UserService) revoke(ctx context.Context, userID uuid.UUID) error {
	if err := s.blacklist.RevokeUser(ctx, userID.String(), s.revokeFor()); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}
