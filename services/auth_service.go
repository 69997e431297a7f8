package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cctv-surveillance-reports/be/config"
	"cctv-surveillance-reports/be/models"
	"cctv-surveillance-reports/be/repository"
	"cctv-surveillance-reports/be/utils"
	"cctv-surveillance-reports/be/vocab"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for an unknown user and for a wrong
	// password alike, so callers cannot tell which usernames exist.
	ErrInvalidCredentials = errors.New("Invalid username or password")
	ErrMissingCredentials = errors.New("Username and password are required")
	ErrUserExists         = errors.New("Username already exists")
	ErrUserNotFound       = errors.New("User not found")
	ErrWrongPassword      = errors.New("Old password is incorrect")
	ErrInvalidRole        = errors.New("Role must be admin or user")
	ErrInvalidToken       = errors.New("Invalid or expired token")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("Password must be at most 72 bytes")
)

// Identity is what a successful login reveals about a user.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type AuthService struct {
	users     repository.Users
	jwtConfig config.JWTConfig
	// dummyHash is compared against when the username does not exist, so
	// both failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(users repository.Users, jwtConfig config.JWTConfig) (*AuthService, error) {
	dummy, err := utils.HashPassword("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}
	return &AuthService{users: users, jwtConfig: jwtConfig, dummyHash: dummy}, nil
}

// Login verifies the password against the stored hash and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Identity, string, error) {
	if username == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.CheckPassword(s.dummyHash, password)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	identity := &Identity{Username: user.Username, Role: user.Role}
	token, err := s.IssueToken(*identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

// IssueToken signs an HS256 token carrying the username and role.
func (s *AuthService) IssueToken(identity Identity) (string, error) {
	expiry, err := time.ParseDuration(s.jwtConfig.Expiry)
	if err != nil || expiry <= 0 {
		expiry = 24 * time.Hour
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  identity.Username,
		"role": identity.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(expiry).Unix(),
	})
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token produced by IssueToken.
func ParseToken(secret, tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	username, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if username == "" || role == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{Username: username, Role: role}, nil
}

// Register creates a user; an empty role defaults to "user".
func (s *AuthService) Register(ctx context.Context, username, password, role string) (*Identity, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if role == "" {
		role = vocab.RoleUser
	}
	if !vocab.Roles().Contains(role) {
		return nil, ErrInvalidRole
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	err = s.users.Create(ctx, &models.User{Username: username, PasswordHash: hashed, Role: role})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return &Identity{Username: username, Role: role}, nil
}

// ChangePassword replaces a user's password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if newPassword == "" {
		return ErrMissingCredentials
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !utils.CheckPassword(user.PasswordHash, oldPassword) {
		return ErrWrongPassword
	}
	return s.setPassword(ctx, username, newPassword)
}

// AdminChangePassword replaces any user's password without the old one.
func (s *AuthService) AdminChangePassword(ctx context.Context, username, newPassword string) error {
	if username == "" || newPassword == "" {
		return ErrMissingCredentials
	}
	return s.setPassword(ctx, username, newPassword)
}

func (s *AuthService) setPassword(ctx context.Context, username, password string) error {
	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, username, hashed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := utils.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	return hashed, err
}

// ListUsers returns every account's public identity.
func (s *AuthService) ListUsers(ctx context.Context) ([]Identity, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Identity, len(users))
	for i, u := range users {
		out[i] = Identity{Username: u.Username, Role: u.Role}
	}
	return out, nil
}
