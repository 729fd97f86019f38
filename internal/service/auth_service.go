package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"atlas/config"
	"atlas/internal/authz"
	"atlas/internal/dto"
	"atlas/internal/repository"
	"atlas/pkg/jwt"
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error
	// IsRevoked 检查 Token 是否已登出；黑名单不可用时视为未吊销
	IsRevoked(ctx context.Context, jti string) bool
	// LoadPrincipal 每次请求从数据库重建授权主体
	LoadPrincipal(ctx context.Context, userID string) (authz.Principal, error)
	Me(ctx context.Context, p authz.Principal) (*dto.MeResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	tokens TokenStore
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例，tokens 可为 nil
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		tokens: tokens,
		logger: logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. 生成 Token 对
	return s.issue(ctx, user.UserID, user.Role)
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	if s.IsRevoked(ctx, claims.ID) {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 轮换：旧 Refresh Token 立即失效
	s.revoke(ctx, claims)
	return s.issue(ctx, user.UserID, user.Role)
}

func (s *authService) Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error {
	if access == nil {
		return nil
	}
	s.revoke(ctx, access)
	if refreshToken != "" {
		if claims, err := s.jwtMgr.ParseToken(refreshToken); err == nil && claims.UserID == access.UserID {
			s.revoke(ctx, claims)
		}
	}
	return nil
}

func (s *authService) IsRevoked(ctx context.Context, jti string) bool {
	if s.tokens == nil || jti == "" {
		return false
	}
	revoked, err := s.tokens.IsBlacklisted(ctx, jti)
	if err != nil {
		s.logger.Warn("查询 Token 黑名单失败", zap.Error(err))
		return false
	}
	return revoked
}

func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if s.tokens == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	if err := s.tokens.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("写入 Token 黑名单失败", zap.String("jti", claims.ID), zap.Error(err))
	}
}

func (s *authService) issue(ctx context.Context, userID, role string) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(userID, role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(userID, role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	depts, err := s.repo.User.ListDepartmentIDs(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户部门失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user, depts),
	}, nil
}

func (s *authService) LoadPrincipal(ctx context.Context, userID string) (authz.Principal, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.Principal{}, ErrUserNotFound
		}
		s.logger.Error("加载主体失败", zap.String("user_id", userID), zap.Error(err))
		return authz.Principal{}, err
	}
	depts, err := s.repo.User.ListDepartmentIDs(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户部门失败", zap.String("user_id", userID), zap.Error(err))
		return authz.Principal{}, err
	}
	heads, err := s.repo.User.ListHeadGrants(ctx, userID)
	if err != nil {
		s.logger.Error("查询部门负责人授权失败", zap.String("user_id", userID), zap.Error(err))
		return authz.Principal{}, err
	}

	grants := make([]authz.HeadGrant, 0, len(heads))
	for _, h := range heads {
		grants = append(grants, authz.HeadGrant{DepartmentID: h.DepartmentID, RegionID: h.RegionID})
	}
	return authz.NewPrincipal(user.UserID, roleOf(user), user.RegionID, user.IsActive, depts, grants), nil
}

func (s *authService) Me(ctx context.Context, p authz.Principal) (*dto.MeResponse, error) {
	user, err := s.repo.User.GetByID(ctx, p.ID())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	grants := make([]dto.HeadGrantResponse, 0)
	for _, g := range p.HeadGrants() {
		grants = append(grants, dto.HeadGrantResponse{DepartmentID: g.DepartmentID, RegionID: g.RegionID})
	}
	return &dto.MeResponse{
		UserResponse: toUserResponse(user, p.DepartmentIDs()),
		RoleLevel:    p.Level(),
		Unrestricted: p.Unrestricted(),
		HeadGrants:   grants,
	}, nil
}
