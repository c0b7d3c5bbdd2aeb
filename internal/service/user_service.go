package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus-complaints/internal/models"
	"campus-complaints/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

type RegisterInput struct {
	Name     string
	Username string
	Password string
	Email    string
}

// Register creates a student account. An existing username fails with
// ErrUsernameTaken and leaves the store untouched.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := util.ValidateRequired(
		[2]string{"name", in.Name},
		[2]string{"username", in.Username},
		[2]string{"password", in.Password},
	); err != nil {
		return nil, invalid(err)
	}
	if err := util.ValidateUsername(in.Username); err != nil {
		return nil, invalid(err)
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return nil, invalid(err)
	}
	if err := util.ValidateEmail(in.Email); err != nil {
		return nil, invalid(err)
	}

	return s.create(ctx, in, models.RoleStudent)
}

func (s *UserService) create(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("look up username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         role,
	}
	if in.Email != "" {
		email := in.Email
		user.Email = &email
	}
	if err := db.Create(&user).Error; err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate matches the exact username and verifies the password hash.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if !util.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureAdmin creates the admin account if the username is free. It reports
// whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password, name string) (bool, error) {
	if name == "" {
		name = "Administrator"
	}
	in := RegisterInput{Name: name, Username: strings.TrimSpace(username), Password: password}
	if err := util.ValidateUsername(in.Username); err != nil {
		return false, invalid(err)
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return false, invalid(err)
	}

	_, err := s.create(ctx, in, models.RoleAdmin)
	if errors.Is(err, ErrUsernameTaken) {
		return false, nil
	}
	return err == nil, err
}

// Promote grants the admin role to an existing account.
func (s *UserService) Promote(ctx context.Context, username string) error {
	return s.SetRole(ctx, username, string(models.RoleAdmin))
}

// SetRole assigns role to username. role must name a known role.
func (s *UserService) SetRole(ctx context.Context, username, role string) error {
	r, err := models.ParseRole(strings.TrimSpace(role))
	if err != nil {
		return invalid(err)
	}
	res := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		UpdateColumn("role", r)
	if res.Error != nil {
		return fmt.Errorf("set role of %s: %w", username, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %q does not exist", username)
	}
	return nil
}
