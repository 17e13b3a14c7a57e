package service

import (
	"context"
	"database/sql"
	"errors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"storefront/internal/entity"
	"storefront/internal/repository"
	"time"
)

// JwtCustomClaims is the payload of access tokens. UserID is the identity
// handed to the order workflow.
type JwtCustomClaims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

type Registration struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type UserService struct {
	db           *sql.DB
	userRepo     *repository.UserRepository
	customerRepo *repository.CustomerRepository
	secret       []byte
	tokenTTL     time.Duration
}

// NewUserService creates a new instance of UserService.
func NewUserService(db *sql.DB, userRepo *repository.UserRepository, customerRepo *repository.CustomerRepository, secret string, tokenTTL time.Duration) *UserService {
	return &UserService{
		db:           db,
		userRepo:     userRepo,
		customerRepo: customerRepo,
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
	}
}

// Register creates the user and its customer record together.
func (s *UserService) Register(ctx context.Context, reg Registration) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     reg.Username,
		Email:        reg.Email,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		PasswordHash: string(hash),
	}

	err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.userRepo.CreateUser(ctx, tx, user); err != nil {
			return err
		}
		return s.customerRepo.CreateCustomer(ctx, tx, &entity.Customer{
			UserID:     user.ID,
			Membership: entity.MembershipBronze,
		})
	})
	if repository.IsDuplicateEntry(err) {
		return nil, ErrUserExists
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error registering user")
		return nil, err
	}

	return user, nil
}

// Login checks the credentials and returns a signed access token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.IssueToken(user)
}

// IssueToken signs an HS256 token for the user.
func (s *UserService) IssueToken(user *entity.User) (string, error) {
	claims := &JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString(s.secret)
}
