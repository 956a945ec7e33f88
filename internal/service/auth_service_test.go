package service

import (
	"errors"
	"sqlprep_backend/internal/model"
	"sqlprep_backend/internal/repository"
	"sqlprep_backend/internal/util"
	"testing"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(repository.NewUserRepository(newTestDB(t)), newTestConfig())
}

func TestRegisterAndLogin(t *testing.T) {
	s := newAuthService(t)

	user := &model.User{Name: "Asha", Email: "asha@example.com", Password: "secret123"}
	if err := s.Register(user); err != nil {
		t.Fatalf("register: %v", err)
	}

	if user.Password == "secret123" {
		t.Error("password stored in plain text")
	}

	got, token, err := s.Login("asha@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Error("expected a session token")
	}
	if got.Name != "Asha" {
		t.Errorf("login returned name %q, want Asha", got.Name)
	}

	claims, err := s.VerifySession(token)
	if err != nil {
		t.Fatalf("verify session: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != "asha@example.com" || claims.Name != "Asha" {
		t.Errorf("claims = %+v, want bound to registered user", claims)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newAuthService(t)

	if err := s.Register(&model.User{Name: "A", Email: "dup@example.com", Password: "pw123456"}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	err := s.Register(&model.User{Name: "B", Email: "dup@example.com", Password: "pw654321"})
	if !errors.Is(err, util.ErrEmailRegistered) {
		t.Errorf("second register err = %v, want ErrEmailRegistered", err)
	}
}

func TestLoginFailures(t *testing.T) {
	s := newAuthService(t)

	if err := s.Register(&model.User{Name: "A", Email: "a@example.com", Password: "right-pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "a@example.com", password: "wrong-pw"},
		{name: "unknown email", email: "nobody@example.com", password: "right-pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.Login(tt.email, tt.password); !errors.Is(err, util.ErrInvalidCredentials) {
				t.Errorf("Login() err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

// 基础设施故障不能伪装成凭据错误，否则控制器会回 400 而不是 500
func TestLoginSurfacesDatabaseFailure(t *testing.T) {
	db := newTestDB(t)
	s := NewAuthService(repository.NewUserRepository(db), newTestConfig())

	if err := s.Register(&model.User{Name: "A", Email: "a@example.com", Password: "right-pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.Close()

	_, _, err = s.Login("a@example.com", "right-pw")
	if err == nil {
		t.Fatal("Login() succeeded against a closed database")
	}
	if errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("Login() err = ErrInvalidCredentials, want the raw database error")
	}
}

func TestVerifySessionRejectsGarbage(t *testing.T) {
	s := newAuthService(t)

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		if _, err := s.VerifySession(token); err == nil {
			t.Errorf("VerifySession(%q) accepted an invalid token", token)
		}
	}
}
