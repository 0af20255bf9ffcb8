package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"service-portal/internal/auth"
	"service-portal/internal/model"
	"service-portal/internal/repository"
)

type AccountService struct {
	userRepo    *repository.UserRepository
	issuer      *auth.Issuer
	accessCodes map[model.UserRole]string
}

func NewAccountService(userRepo *repository.UserRepository, issuer *auth.Issuer, accessCodes map[model.UserRole]string) *AccountService {
	return &AccountService{
		userRepo:    userRepo,
		issuer:      issuer,
		accessCodes: accessCodes,
	}
}

type RegisterInput struct {
	Username    string `json:"username" validate:"required,max=150"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=6,bcrypt_len"`
	PhoneNumber string `json:"phone_number" validate:"max=15"`
	Address     string `json:"address"`
}

// Register creates a citizen account. Staff accounts are provisioned by
// EnsureStaff.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.newUser(input.Username, input.Email, input.Password, model.UserRoleCitizen)
	if err != nil {
		return nil, err
	}
	user.PhoneNumber = input.PhoneNumber
	user.Address = cleanText(input.Address)

	if err := s.create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type StaffInput struct {
	Username    string         `json:"username" validate:"required,max=150"`
	Email       string         `json:"email" validate:"required,email,max=254"`
	Password    string         `json:"password" validate:"required,min=6,bcrypt_len"`
	Role        model.UserRole `json:"role" validate:"required"`
	PhoneNumber string         `json:"phone_number" validate:"max=15"`
}

// EnsureStaff creates the staff account unless the username is taken.
// It reports whether an account was created.
func (s *AccountService) EnsureStaff(ctx context.Context, input StaffInput) (bool, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	if err := validateInput(input); err != nil {
		return false, err
	}
	if !input.Role.IsStaff() {
		return false, fmt.Errorf("%w: %q is not a staff role", ErrValidation, input.Role)
	}
	existing, err := s.userRepo.CountByUsername(ctx, input.Username)
	if err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}

	user, err := s.newUser(input.Username, input.Email, input.Password, input.Role)
	if err != nil {
		return false, err
	}
	user.PhoneNumber = input.PhoneNumber
	if err := s.create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

// newUser expects validated input.
func (s *AccountService) newUser(username, email, password string, role model.UserRole) (*model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}, nil
}

func (s *AccountService) create(ctx context.Context, user *model.User) error {
	taken, err := s.userRepo.CountByUsername(ctx, user.Username)
	if err != nil {
		return err
	}
	if taken > 0 {
		return fmt.Errorf("%w: username %q is taken", ErrConflict, user.Username)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: username %q is taken", ErrConflict, user.Username)
		}
		return err
	}
	return nil
}

type LoginInput struct {
	Username   string
	Password   string
	AccessCode string
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Login checks the password and, for staff roles with a configured code,
// the role's access code.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if code := s.accessCodes[user.Role]; user.Role.IsStaff() && code != "" {
		if subtle.ConstantTimeCompare([]byte(code), []byte(input.AccessCode)) != 1 {
			return nil, fmt.Errorf("%w: access code mismatch", ErrInvalidCredentials)
		}
	}

	token, expires, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

func (s *AccountService) Me(ctx context.Context, principal model.Principal) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// DeleteStaff removes a staff account. Complaints it was handling keep their
// status and lose their officer, so another officer can take them over. The
// count of such complaints is returned.
func (s *AccountService) DeleteStaff(ctx context.Context, principal model.Principal, id uuid.UUID) (int64, error) {
	if err := authorize(principal, CapManageStaff); err != nil {
		return 0, err
	}
	if id == principal.UserID {
		return 0, fmt.Errorf("%w: cannot delete your own account", ErrValidation)
	}
	released, err := s.userRepo.DeleteStaff(ctx, id)
	if err != nil {
		return 0, translate(err)
	}
	return released, nil
}
