package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/backoffice-api/internal/domain"
	"github.com/straye-as/backoffice-api/internal/mapper"
	"github.com/straye-as/backoffice-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService manages the members of an organization
type UserService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) checkEmail(ctx context.Context, orgID uuid.UUID, email string, excludeID *uuid.UUID) error {
	taken, err := s.userRepo.EmailTaken(ctx, orgID, email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check user email: %w", err)
	}
	if taken {
		return ErrUserEmailExists
	}
	return nil
}

// Create adds a user. Emails are unique within the organization.
func (s *UserService) Create(ctx context.Context, orgID uuid.UUID, req *domain.CreateUserRequest) (*domain.UserDTO, error) {
	email := normalizeEmail(req.Email)
	if err := s.checkEmail(ctx, orgID, email, nil); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = domain.RoleReadOnly
	}

	user := &domain.User{
		OrganizationID: orgID,
		Email:          email,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Phone:          req.Phone,
		Role:           role,
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrUserEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created",
		zap.String("organization_id", orgID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) getUser(ctx context.Context, orgID, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.UserDTO, error) {
	user, err := s.getUser(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) List(ctx context.Context, orgID uuid.UUID) ([]domain.UserDTO, error) {
	users, err := s.userRepo.List(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToUserDTO(&users[i])
	}
	return dtos, nil
}

// Update applies the fields present in the request
func (s *UserService) Update(ctx context.Context, orgID, id uuid.UUID, req *domain.UpdateUserRequest) (*domain.UserDTO, error) {
	user, err := s.getUser(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			if err := s.checkEmail(ctx, orgID, email, &user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrUserEmailExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.getUser(ctx, orgID, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, orgID, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted",
		zap.String("organization_id", orgID.String()),
		zap.String("user_id", id.String()))
	return nil
}
