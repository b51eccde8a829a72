package service

import (
	"context"
	"testing"
	"time"

	"github.com/Minsekko/SJP-HR/internal/config"
	"github.com/Minsekko/SJP-HR/internal/repository"
	"github.com/Minsekko/SJP-HR/internal/testutil"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) (*AuthService, *repository.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenExpire = 2 * time.Hour
	cfg.JWT.RefreshTokenExpire = 168 * time.Hour
	cfg.JWT.Issuer = "sjp-hr"

	svc := NewAuthService(repos.User, repos.Employee, nil, cfg)
	return svc, repos, db
}

func TestLogin(t *testing.T) {
	svc, repos, db := setupAuthTest(t)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "admin", "admin")

	got, pair, err := svc.Login(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("user.ID = %d, want %d", got.ID, user.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("empty token pair")
	}
	if pair.ExpiresIn != int64((2 * time.Hour).Seconds()) {
		t.Errorf("expires_in = %d", pair.ExpiresIn)
	}

	// 最后登录时间已更新
	refreshed, err := repos.User.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if refreshed.LastLogin == nil {
		t.Error("last_login not set")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, db := setupAuthTest(t)

	testutil.SeedTestUser(t, db, "admin", "admin")

	if _, _, err := svc.Login(context.Background(), "admin", "wrong"); err == nil {
		t.Error("expected error for wrong password")
	}
	if _, _, err := svc.Login(context.Background(), "nobody", "admin123"); err == nil {
		t.Error("expected error for unknown user")
	}
}

func TestLoginInactiveUser(t *testing.T) {
	svc, _, db := setupAuthTest(t)

	user := testutil.SeedTestUser(t, db, "former", "staff")
	if err := db.Model(user).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate user: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "former", "admin123"); err == nil {
		t.Error("expected error for inactive user")
	}
}

func TestRefreshToken(t *testing.T) {
	svc, _, db := setupAuthTest(t)
	ctx := context.Background()

	testutil.SeedTestUser(t, db, "staff1", "staff")

	_, pair, err := svc.Login(ctx, "staff1", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	newPair, err := svc.RefreshToken(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if newPair.AccessToken == "" {
		t.Error("empty access token after refresh")
	}

	if _, err := svc.RefreshToken(ctx, "not-a-token"); err == nil {
		t.Error("expected error for garbage refresh token")
	}
}
