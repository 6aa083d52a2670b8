package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/fjod/go_petshop/internal/logger"
	"github.com/fjod/go_petshop/internal/repository"
)

type UserService struct {
	repo repository.UserRepository
	log  *logger.Logger
}

func NewUserService(repo repository.UserRepository, log *logger.Logger) *UserService {
	if log == nil {
		log = logger.Nop()
	}
	return &UserService{repo: repo, log: log}
}

// RegisterUser stores a new account with the plain user role.
func (s *UserService) RegisterUser(ctx context.Context, user *domain.User) (string, error) {
	if user == nil {
		return "", fmt.Errorf("%w: user is required", domain.ErrInvalidRequest)
	}
	if err := requireEmail(user.Email); err != nil {
		return "", err
	}
	ctx = s.log.WithOwner(ctx, user.Email)
	user.ID = ""
	user.Role = domain.RoleUser

	id, err := s.repo.InsertUser(ctx, user)
	if errors.Is(err, repository.ErrUserExists) {
		return "", fmt.Errorf("%w: user already exists", domain.ErrConflict)
	}
	if err != nil {
		return "", s.storeFailure(ctx, "register user", err)
	}
	s.log.Info(ctx, "user registered")
	return id, nil
}

// RoleOf reports the role for email. Unknown accounts get the plain user
// role so nothing is granted by default.
func (s *UserService) RoleOf(ctx context.Context, email string) (domain.Role, error) {
	if err := requireEmail(email); err != nil {
		return "", err
	}
	user, err := s.repo.FindUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return domain.RoleUser, nil
	}
	if err != nil {
		return "", s.storeFailure(ctx, "get user role", err)
	}
	return user.EffectiveRole(), nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, s.storeFailure(ctx, "list users", err)
	}
	return users, nil
}

func (s *UserService) MakeAdmin(ctx context.Context, id string) (domain.WriteAck, error) {
	return s.setRole(ctx, id, domain.RoleAdmin)
}

func (s *UserService) RemoveAdmin(ctx context.Context, id string) (domain.WriteAck, error) {
	return s.setRole(ctx, id, domain.RoleUser)
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return mapEntityError(ctx, s.log, "delete user", "user", id, s.repo.DeleteUser(ctx, id), repository.ErrUserNotFound)
}

func (s *UserService) setRole(ctx context.Context, id string, role domain.Role) (domain.WriteAck, error) {
	ack, err := s.repo.SetRole(ctx, id, role)
	if err != nil {
		return domain.WriteAck{}, mapEntityError(ctx, s.log, "set user role", "user", id, err, repository.ErrUserNotFound)
	}
	s.log.Info(ctx, fmt.Sprintf("user %s is now %s", id, role))
	return ack, nil
}

func (s *UserService) storeFailure(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op+" failed", err)
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreFailure, op, err)
}
