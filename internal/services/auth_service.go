package services

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicsight/internal/auth"
	"github.com/civicsight/internal/models"
	"github.com/civicsight/internal/repositories"
	"github.com/civicsight/pkg/utils"
)

// MinPasswordLength 是密码的最小长度
const MinPasswordLength = 6

// AuthResult 是注册和登录的返回结果
type AuthResult struct {
	Token string              `json:"token"`
	User  *models.UserSummary `json:"user"`
}

// Profile 是个人资料及其统计
type Profile struct {
	*models.User
	Stats models.UserStats `json:"stats"`
}

// AuthService 定义了用户注册、登录与个人资料的接口
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context, userID string) (*Profile, error)
}

// authService 是 AuthService 的实现
type authService struct {
	users   repositories.UserRepository
	reports repositories.ReportRepository
	tokens  *auth.TokenManager
}

// NewAuthService 创建一个新的 authService 实例
func NewAuthService(users repositories.UserRepository, reports repositories.ReportRepository, tokens *auth.TokenManager) AuthService {
	return &authService{users: users, reports: reports, tokens: tokens}
}

// HashPassword 使用 bcrypt 生成密码哈希
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = normalizeText(name)
	email = utils.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, newValidationError(CodeMissingFields, "All fields (name, email, password) are required")
	}
	if !utils.ValidateEmailFormat(email) {
		return nil, newValidationError(CodeValidation, "email is invalid")
	}
	if len(password) < MinPasswordLength {
		return nil, newValidationError(CodeValidation, "password must be at least 6 characters")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleCitizen,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailExists) {
			return nil, newValidationError(CodeUserExists, "User already exists with this email")
		}
		return nil, err
	}
	log.Printf("[Auth] New user registered: %s (ID: %s)", user.Email, user.ID)
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, newValidationError(CodeMissingFields, "Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, newValidationError(CodeInvalidCredentials, "Invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, newValidationError(CodeInvalidCredentials, "Invalid credentials")
	}
	log.Printf("[Auth] User logged in: %s", user.Email)
	return s.issue(user)
}

// Profile 返回用户资料，统计数据由用户的报告实时计算
func (s *authService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err, ErrUserNotFound)
	}
	reports, err := s.reports.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Stats: models.ComputeUserStats(reports)}, nil
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, _, err := s.tokens.IssueToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.Summary()}, nil
}
