package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"casemate-backend/internal/shared/auth"
)

// ErrInvalidCredentials is returned when email or password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// SignupInput carries the fields required to register a new user.
type SignupInput struct {
	Name         string
	Email        string
	Password     string
	Role         string
	BarCouncilID string
	MobileNumber string
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Signup registers a user and returns a signed token for the new identity.
func (s *Service) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return AuthResult{}, fmt.Errorf("name, email and password are required")
	}
	if !ValidRole(in.Role) {
		return AuthResult{}, fmt.Errorf("role must be %q or %q", RoleLawyer, RoleClient)
	}
	if in.Role == RoleLawyer && strings.TrimSpace(in.BarCouncilID) == "" {
		return AuthResult{}, fmt.Errorf("bar council id is required for lawyers")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		BarCouncilID: strings.TrimSpace(in.BarCouncilID),
		MobileNumber: strings.TrimSpace(in.MobileNumber),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

// GetByID returns the user for the given id.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	return s.Repo.GetByID(ctx, userID)
}

// LinkClient associates a client with a lawyer. The client is looked up by
// email so lawyers never need to know internal ids.
func (s *Service) LinkClient(ctx context.Context, lawyerID, clientEmail string) (User, error) {
	clientEmail = strings.ToLower(strings.TrimSpace(clientEmail))
	if clientEmail == "" {
		return User{}, fmt.Errorf("client email is required")
	}
	client, err := s.Repo.GetByEmail(ctx, clientEmail)
	if err != nil {
		return User{}, err
	}
	if client.Role != RoleClient {
		return User{}, fmt.Errorf("user %s is not a client", clientEmail)
	}
	if err := s.Repo.Link(ctx, lawyerID, client.ID); err != nil {
		return User{}, err
	}
	return client, nil
}

// ListLinked returns the users linked to the given user: clients for a
// lawyer, lawyers for a client.
func (s *Service) ListLinked(ctx context.Context, userID, role string) ([]User, error) {
	return s.Repo.ListLinked(ctx, userID, role)
}

func (s *Service) issueToken(user User) (string, error) {
	token, err := auth.SignJWT(auth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
