/*
Package auth registers operators and issues the tokens that guard the API.

PURPOSE:
  The fridge service is operated by a handful of trusted people. Accounts
  exist so actions can be attributed and, optionally, so the API can require
  a bearer token.

ROLES:
  The first account ever registered becomes RoleAdmin; every later account
  is RoleUser. The user count and the insert run inside one store
  transaction, so two concurrent first registrations cannot both become
  admin.

PASSWORDS:
  Stored as bcrypt hashes only. Login compares against the hash and returns
  the same error for an unknown email and a wrong password.

SEE ALSO:
  - token.go: JWT issuing and parsing
  - store/sqlite/users.go: SQLite UserTxStore
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role is the access level of an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidInput       = errors.New("invalid registration input")
)

// User is a registered operator.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// UserStore persists accounts. GetUserByEmail returns (nil, nil) when the
// email is unknown.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CountUsers(ctx context.Context) (int, error)
	// InsertUser returns ErrEmailTaken when the email already exists.
	InsertUser(ctx context.Context, u User) error
}

// UserTxStore runs several UserStore calls atomically.
type UserTxStore interface {
	UserStore
	WithUserTx(ctx context.Context, fn func(UserStore) error) error
}

// Session is what a successful login hands back to the client.
type Session struct {
	Email     string
	Role      Role
	Token     string
	ExpiresAt time.Time
}

// Service implements registration and login.
type Service struct {
	users    UserTxStore
	tokens   *TokenIssuer
	validate *validator.Validate

	// HashCost is the bcrypt cost. Tests lower it to bcrypt.MinCost.
	HashCost int
	Now      func() time.Time
}

func NewService(users UserTxStore, tokens *TokenIssuer) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
		HashCost: bcrypt.DefaultCost,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account. Emails are compared case-insensitively.
func (s *Service) Register(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return User{}, fmt.Errorf("%w: email must be a valid address", ErrInvalidInput)
	}
	if password == "" {
		return User{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleUser,
		CreatedAt:    s.Now(),
	}
	err = s.users.WithUserTx(ctx, func(tx UserStore) error {
		n, err := tx.CountUsers(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			u.Role = RoleAdmin
		}
		return tx.InsertUser(ctx, u)
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Login checks credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return Session{}, err
	}
	if u == nil {
		return Session{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(*u, s.Now())
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Email: u.Email, Role: u.Role, Token: token, ExpiresAt: expires}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
