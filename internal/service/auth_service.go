package service

import (
	"errors"
	"sqlprep_backend/internal/config"
	"sqlprep_backend/internal/model"
	"sqlprep_backend/internal/repository"
	"sqlprep_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

func (s *AuthService) Register(user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	return s.UserRepo.Create(user)
}

// Login 校验凭据，返回用户和 1 小时有效期的签名令牌。
// 邮箱不存在和密码错误都归一成 ErrInvalidCredentials，不泄露账号是否注册过。
func (s *AuthService) Login(email, password string) (*model.User, string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", util.ErrInvalidCredentials
	} else if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// VerifySession 解析会话令牌。登出不吊销令牌，过期前它一直有效（无状态设计）。
func (s *AuthService) VerifySession(token string) (*util.Claims, error) {
	return util.ParseJWT(token, s.Cfg.JWT.Secret)
}
