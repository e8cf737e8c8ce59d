package service

import (
	"context"
	"errors"
	"fmt"

	"beleske/store"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type Repository interface {
	Create(ctx context.Context, user *store.User) error
	GetByUsername(ctx context.Context, username string) (*store.User, error)
	Exists(ctx context.Context, username string) (bool, error)
}

type UserService struct {
	Repo Repository
	// Cost is the bcrypt work factor.
	Cost int
}

func NewUserService(repo Repository) *UserService {
	return &UserService{Repo: repo, Cost: bcrypt.DefaultCost}
}

// UsernameTaken reports whether a user with this exact username exists.
func (s *UserService) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.Repo.Exists(ctx, username)
}

// Register hashes the password and stores a new user. A concurrent
// registration of the same name surfaces as ErrUsernameTaken too.
func (s *UserService) Register(ctx context.Context, username, password string) (*store.User, error) {
	taken, err := s.Repo.Exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{Username: username, Password: string(hash)}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user when password matches the stored hash. An
// unknown user and a wrong password both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*store.User, error) {
	user, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
