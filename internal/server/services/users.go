package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
)

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token    string
	UserName string
}

// UserService provides authentication-related operations:
// - Register: create users with a bcrypt password hash
// - Login: verify credentials and mint a bearer token
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	credentials auth.CredentialService
}

// NewUserService constructs a UserService using repositories and a credential issuer.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, creds auth.CredentialService) *UserService {
	return &UserService{db: db, repomanager: m, credentials: creds}
}

var errMissingCredentials = common.NewValidationError("", "Username and password are required")

// Register creates a new user. Surrounding whitespace in the username is
// ignored; a taken username yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username string, password []byte) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) == 0 {
		return nil, errMissingCredentials
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{UserName: username, PasswordHash: hash}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login checks the password and issues a bearer token. Unknown users and
// wrong passwords both yield common.ErrorInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username string, password []byte) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) == 0 {
		return nil, errMissingCredentials
	}

	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	token, err := s.credentials.Issue(user.ID, user.UserName)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}
	return &LoginResult{Token: token, UserName: user.UserName}, nil
}
