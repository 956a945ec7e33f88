package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sqlprep_backend/internal/config"
	"sqlprep_backend/internal/repository"
	"sqlprep_backend/internal/service"
	"sqlprep_backend/internal/util"
	"sqlprep_backend/pkg/database"
	"sqlprep_backend/pkg/logger"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
	}
	authService := service.NewAuthService(repository.NewUserRepository(db), cfg)
	authController := NewAuthController(authService, false)

	router := gin.New()
	router.POST("/signup", authController.Signup)
	router.POST("/login", authController.Login)
	router.POST("/logout", authController.Logout)
	router.GET("/auth", authController.CheckAuth)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignupLoginAuthFlow(t *testing.T) {
	router := newAuthRouter(t)

	w := doJSON(t, router, "POST", "/signup", gin.H{
		"name": "Asha", "email": "asha@example.com", "password": "secret123",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signup status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, "POST", "/login", gin.H{
		"email": "asha@example.com", "password": "secret123",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}

	var loginResp struct {
		Message string `json:"message"`
		UserID  uint   `json:"userId"`
		Email   string `json:"email"`
		Name    string `json:"name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginResp.UserID == 0 || loginResp.Email != "asha@example.com" || loginResp.Name != "Asha" {
		t.Errorf("login response = %+v", loginResp)
	}

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == util.SessionCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("login did not set a session cookie")
	}
	if !session.HttpOnly {
		t.Error("session cookie must be httpOnly")
	}

	// 带 Cookie 的会话检查
	w = doJSON(t, router, "GET", "/auth", nil, []*http.Cookie{session})
	if w.Code != http.StatusOK {
		t.Fatalf("auth check status = %d, body %s", w.Code, w.Body.String())
	}

	var authResp struct {
		UserID uint `json:"userId"`
	}
	json.Unmarshal(w.Body.Bytes(), &authResp)
	if authResp.UserID != loginResp.UserID {
		t.Errorf("auth userId = %d, want %d", authResp.UserID, loginResp.UserID)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	router := newAuthRouter(t)

	body := gin.H{"name": "A", "email": "dup@example.com", "password": "pw123456"}
	if w := doJSON(t, router, "POST", "/signup", body, nil); w.Code != http.StatusOK {
		t.Fatalf("first signup status = %d", w.Code)
	}

	w := doJSON(t, router, "POST", "/signup", body, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup status = %d, want 400", w.Code)
	}

	var resp struct {
		Error string `json:"error"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "Email already exists" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := newAuthRouter(t)

	doJSON(t, router, "POST", "/signup", gin.H{"name": "A", "email": "a@example.com", "password": "right-pw"}, nil)

	w := doJSON(t, router, "POST", "/login", gin.H{"email": "a@example.com", "password": "wrong-pw"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("wrong-password login status = %d, want 400", w.Code)
	}
}

func TestAuthWithoutCookie(t *testing.T) {
	router := newAuthRouter(t)

	w := doJSON(t, router, "GET", "/auth", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("auth without cookie status = %d, want 401", w.Code)
	}
}

func TestAuthWithGarbageToken(t *testing.T) {
	router := newAuthRouter(t)

	w := doJSON(t, router, "GET", "/auth", nil, []*http.Cookie{{Name: util.SessionCookie, Value: "garbage"}})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("auth with garbage token status = %d, want 401", w.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	router := newAuthRouter(t)

	w := doJSON(t, router, "POST", "/logout", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == util.SessionCookie {
			cleared = c
		}
	}
	if cleared == nil {
		t.Fatal("logout did not touch the session cookie")
	}
	if cleared.MaxAge >= 0 && cleared.Value != "" {
		t.Errorf("logout left a live cookie: %+v", cleared)
	}
}
