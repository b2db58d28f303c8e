package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"food-delivery-orders/models"
	"food-delivery-orders/store"
)

// UserManager registers and authenticates users. Registering a delivery
// agent also adds them to the agent pool.
type UserManager struct {
	repo store.Repository
	cost int
	settings
}

func NewUserManager(repo store.Repository, opts ...Option) *UserManager {
	return &UserManager{repo: repo, cost: bcrypt.DefaultCost, settings: newSettings(opts)}
}

func (u *UserManager) Register(ctx context.Context, username, password string, role models.UserRole, name string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidUser)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, role)
	}
	if strings.TrimSpace(name) == "" {
		name = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
	}

	err = u.repo.Atomic(ctx, func(tx store.Repository) error {
		_, err := tx.GetUserByUsername(ctx, username)
		if err == nil {
			return ErrUsernameTaken
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := tx.PutUser(ctx, user); err != nil {
			return err
		}
		if role != models.RoleDeliveryAgent {
			return nil
		}
		return tx.PutAgent(ctx, &models.DeliveryAgent{
			ID:     user.ID,
			Name:   user.Name,
			Status: models.AgentAvailable,
		})
	})
	if err != nil {
		if IsExpected(err) {
			return nil, err
		}
		return nil, fmt.Errorf("register %s: %w", username, err)
	}

	u.log.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("User registered")
	return user, nil
}

func (u *UserManager) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := u.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (u *UserManager) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := u.repo.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return user, err
}

func (u *UserManager) List(ctx context.Context, role models.UserRole) ([]models.User, error) {
	users, err := u.repo.ListUsers(ctx)
	if err != nil || role == "" {
		return users, err
	}
	filtered := users[:0]
	for _, user := range users {
		if user.Role == role {
			filtered = append(filtered, user)
		}
	}
	return filtered, nil
}
