package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Minsekko/SJP-HR/internal/config"
	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"github.com/Minsekko/SJP-HR/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// AuthService 认证服务。
// 密码校验是占位实现（固定口令），正式环境需要接入真实账号体系。
type AuthService struct {
	userRepo     *repository.UserRepository
	employeeRepo *repository.EmployeeRepository
	rdb          *redis.Client
	cfg          *config.Config
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo *repository.UserRepository, employeeRepo *repository.EmployeeRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
		rdb:          rdb,
		cfg:          cfg,
	}
}

// 占位口令，与原型保持一致
const placeholderPassword = "admin123"

// TokenPair 访问/刷新令牌对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Claims JWT claims
type Claims struct {
	UserID     uint   `json:"uid"`
	EmployeeID uint   `json:"eid"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) sessionKey(userID uint) string {
	return fmt.Sprintf("session:%d", userID)
}

// Login 登录。校验占位口令，签发令牌对并更新最后登录时间。
func (s *AuthService) Login(ctx context.Context, username, password string) (*entity.User, *TokenPair, error) {
	if username == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.userRepo.FindActiveByUsername(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	// TODO: 接入真实密码存储后改为哈希校验
	if password != placeholderPassword {
		return nil, nil, fmt.Errorf("invalid credentials")
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, nil, fmt.Errorf("touch last login: %w", err)
	}

	return user, pair, nil
}

// RefreshToken 用刷新令牌换取新令牌对
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("parse refresh token: %w", err)
	}

	// 配置了 Redis 时，刷新令牌必须与会话中存的一致
	if s.rdb != nil {
		stored, err := s.rdb.Get(ctx, s.sessionKey(claims.UserID)).Result()
		if err != nil || stored != refreshToken {
			return nil, fmt.Errorf("session expired")
		}
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	return s.issueTokenPair(ctx, user)
}

// GetCurrentUser 获取当前用户
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uint) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// Logout 退出登录，清除会话
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, s.sessionKey(userID)).Err(); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	return nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *entity.User) (*TokenPair, error) {
	var employeeID uint
	if user.Employee != nil {
		employeeID = user.Employee.ID
	} else if emp, err := s.employeeRepo.FindByUserID(ctx, user.ID); err == nil {
		employeeID = emp.ID
	}

	now := time.Now()

	accessToken, err := s.signToken(user, employeeID, now, s.cfg.JWT.AccessTokenExpire)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.signToken(user, employeeID, now, s.cfg.JWT.RefreshTokenExpire)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	// 会话缓存可选，没有 Redis 时仅靠 JWT 本身的有效期
	if s.rdb != nil {
		if err := s.rdb.Set(ctx, s.sessionKey(user.ID), refreshToken, s.cfg.JWT.RefreshTokenExpire).Err(); err != nil {
			return nil, fmt.Errorf("store session: %w", err)
		}
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenExpire.Seconds()),
	}, nil
}

func (s *AuthService) signToken(user *entity.User, employeeID uint, now time.Time, expire time.Duration) (string, error) {
	claims := &Claims{
		UserID:     user.ID,
		EmployeeID: employeeID,
		Username:   user.Username,
		Role:       user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWT.Secret))
}

func (s *AuthService) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
