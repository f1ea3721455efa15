package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/stockimage/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength is the shortest password accepted on register and reset.
const MinPasswordLength = 6

const (
	accessTokenTTL = 24 * time.Hour
	resetTokenTTL  = 24 * time.Hour
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService handles registration, login and password recovery.
type UserService struct {
	db           *gorm.DB
	tokens       *TokenIssuer
	mailer       Mailer
	resetBaseURL string
}

// RegisterInput represents the fields accepted on registration.
type RegisterInput struct {
	Email    string
	Phone    string
	Password string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token  string
	UserID uint
}

// NewUserService creates a UserService. Password reset links are built as
// resetBaseURL + "/reset-password/" + token.
func NewUserService(gdb *gorm.DB, tokens *TokenIssuer, mailer Mailer, resetBaseURL string) *UserService {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &UserService{
		db:           gdb,
		tokens:       tokens,
		mailer:       mailer,
		resetBaseURL: strings.TrimRight(resetBaseURL, "/"),
	}
}

// Register creates a new account with a bcrypt password hash.
func (s *UserService) Register(input RegisterInput) (*db.User, error) {
	email := db.NormalizeEmail(input.Email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	var count int64
	if err := s.db.Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{
		Email:    email,
		Phone:    strings.TrimSpace(input.Phone),
		Password: string(hashed),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Login checks the credentials and issues an access token.
func (s *UserService) Login(email, password string) (LoginResult, error) {
	user, err := s.findByEmail(email)
	if err != nil {
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, TokenPurposeAccess, "", accessTokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, UserID: user.ID}, nil
}

// Authenticate returns the user id carried by a valid access token.
func (s *UserService) Authenticate(token string) (uint, error) {
	claims, err := s.tokens.Parse(token, TokenPurposeAccess)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// ForgotPassword emails a password reset link to the account owner.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.findByEmail(email)
	if err != nil {
		return err
	}

	token, err := s.tokens.Issue(user.ID, TokenPurposeReset, passwordStamp(user.Password), resetTokenTTL)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.resetBaseURL, token)
	body, err := renderMail(fmt.Sprintf(
		"We received a request to reset your password.\n\n"+
			"[Click here to reset your password](%s)\n\n"+
			"The link expires in %d hours. If you did not ask for it, ignore this email.\n",
		link, int(resetTokenTTL.Hours()),
	))
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, user.Email, "Password Reset", body); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// ResetPassword sets a new password for the user named by a reset token. A
// token stops working once the password it was issued against has changed.
func (s *UserService) ResetPassword(token, password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	claims, err := s.tokens.Parse(token, TokenPurposeReset)
	if err != nil {
		return err
	}

	var user db.User
	if err := s.db.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("find user: %w", err)
	}
	if claims.Stamp != passwordStamp(user.Password) {
		return ErrInvalidToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.Model(&user).Update("password", string(hashed)).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *UserService) findByEmail(email string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("email = ?", db.NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func passwordStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
