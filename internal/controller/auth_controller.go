package controller

import (
	"errors"
	"net/http"
	"sqlprep_backend/internal/model"
	"sqlprep_backend/internal/service"
	"sqlprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	IsRelease   bool // 是否为生产环境，决定 Cookie 的 Secure 标志
}

func NewAuthController(authService *service.AuthService, isRelease bool) *AuthController {
	return &AuthController{
		AuthService: authService,
		IsRelease:   isRelease,
	}
}

// swagger:model SignupRequest
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup godoc
// @Summary 注册新用户
// @Description 使用姓名、邮箱和密码注册
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body SignupRequest true "注册信息"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "邮箱已存在"
// @Router /signup [post]
func (c *AuthController) Signup(ctx *gin.Context) {
	var req SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}

	if err := c.AuthService.Register(user); err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.BadRequest(ctx, "Email already exists")
		} else {
			util.LogInternalError(ctx, "Error creating user", err)
		}
		return
	}

	util.Message(ctx, "User created successfully", nil)
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 用户登录
// @Description 校验凭据，通过 httpOnly Cookie 下发 1 小时有效期的会话令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录凭据"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, token, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			util.BadRequest(ctx, "Invalid credentials")
		} else {
			util.LogInternalError(ctx, "Error logging in", err)
		}
		return
	}

	c.setSessionCookie(ctx, token, int(c.AuthService.Cfg.JWT.ExpireTime.Seconds()))

	util.Message(ctx, "Login successful", gin.H{
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
	})
}

// Logout godoc
// @Summary 退出登录
// @Description 清除会话 Cookie；令牌本身无吊销机制，到期自然失效
// @Tags 认证
// @Produce  json
// @Success 200 {object} map[string]string
// @Router /logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	c.setSessionCookie(ctx, "", -1)
	util.Message(ctx, "Logged out", nil)
}

// CheckAuth godoc
// @Summary 会话检查
// @Description 读取 token Cookie 并校验签名与有效期
// @Tags 认证
// @Produce  json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /auth [get]
func (c *AuthController) CheckAuth(ctx *gin.Context) {
	token, err := ctx.Cookie(util.SessionCookie)
	if err != nil || token == "" {
		util.Unauthorized(ctx, "Not authenticated")
		return
	}

	claims, err := c.AuthService.VerifySession(token)
	if err != nil {
		util.Unauthorized(ctx, "Invalid token")
		return
	}

	util.Message(ctx, "Authenticated", gin.H{"userId": claims.UserID})
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(util.SessionCookie, token, maxAge, "/", "", c.IsRelease, true)
}
