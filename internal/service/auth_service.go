package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/internal/client"
	"github.com/group-shedule/schedule-site/internal/session"
	"github.com/group-shedule/schedule-site/pkg/jwt"
)

const (
	msgInvalidCredentials = "Неверный логин или пароль"
	msgLoginServerError   = "Ошибка сервера при входе"
	msgLogoutConfirm      = "Выйти из режима админа?"
)

var ErrTokenRevoked = errors.New("token revoked")

// AuthService 管理员会话
//
// 凭据由后端校验；校验通过后由本服务签发带有效期的管理员 Token。
// 该 Token 只决定界面上展示哪些管理操作，真正的权限由后端判断。
type AuthService interface {
	// Login 空凭据视为取消，返回空 Token 且无错误
	Login(ctx context.Context, st *session.State, login, password string) (string, error)
	// Logout 需确认；返回是否真正退出
	Logout(ctx context.Context, st *session.State, token string, c Confirmer) (bool, error)
	// Authenticate 校验管理员 Token（签名、有效期、吊销名单）
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
}

type authService struct {
	backend   client.Backend
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(backend client.Backend, jwtMgr *jwt.Manager, blacklist TokenBlacklist, logger *zap.Logger) AuthService {
	return &authService{backend: backend, jwtMgr: jwtMgr, blacklist: blacklist, logger: logger}
}

func (s *authService) Login(ctx context.Context, st *session.State, login, password string) (string, error) {
	if login == "" || password == "" {
		return "", nil
	}

	ok, err := s.backend.Login(ctx, login, password)
	if err != nil {
		s.logger.Warn("登录请求失败", zap.Error(err))
		return "", alert(msgLoginServerError, err)
	}
	if !ok {
		return "", alert(msgInvalidCredentials, nil)
	}

	token, err := s.jwtMgr.GenerateAdminToken(login)
	if err != nil {
		s.logger.Error("签发管理员 Token 失败", zap.Error(err))
		return "", alert(msgLoginServerError, err)
	}
	st.IsAdmin = true
	st.AdminName = login
	st.CloseModal()
	s.logger.Info("管理员登录", zap.String("login", login))
	return token, nil
}

func (s *authService) Logout(ctx context.Context, st *session.State, token string, c Confirmer) (bool, error) {
	if !c.Confirm(msgLogoutConfirm) {
		return false, nil
	}
	if token != "" && s.blacklist != nil {
		if claims, err := s.jwtMgr.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
				s.logger.Warn("吊销管理员 Token 失败", zap.Error(err))
			}
		}
	}
	st.IsAdmin = false
	st.AdminName = ""
	st.CloseModal()
	return true, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return nil, jwt.ErrTokenInvalid
	}
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			// Redis 出错时降级放行
			s.logger.Warn("查询 Token 吊销名单失败", zap.Error(err))
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}
