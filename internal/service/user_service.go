package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/repository"
	"github.com/evalhub/evalhub-backend/internal/response"
)

// UserService handles account management for admins.
type UserService struct {
	repo *repository.UserRepository
	auth *AuthService
	log  zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.UserRepository, auth *AuthService, log zerolog.Logger) *UserService {
	return &UserService{
		repo: repo,
		auth: auth,
		log:  log.With().Str("component", "user_service").Logger(),
	}
}

// GetByID retrieves an account by its UUID.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves accounts with pagination, optionally filtered by role.
func (s *UserService) List(ctx context.Context, role model.Role, page, perPage int) ([]model.User, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	users, total, err := s.repo.ListPaginated(ctx, role, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if users == nil {
		users = []model.User{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return users, pagination, nil
}

// Update modifies an account. An empty password leaves the hash unchanged.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Password != "" {
		hash, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes an account and releases its device binding.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.auth.ResetExamineeSession(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("user_id", id.String()).Msg("Failed to clear session binding")
	}
	return nil
}
