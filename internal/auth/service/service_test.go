package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopstack/shopbill/internal/auth/domain"
	authrepo "github.com/shopstack/shopbill/internal/auth/repository"
	authservice "github.com/shopstack/shopbill/internal/auth/service"
	"github.com/shopstack/shopbill/internal/clock"
	"github.com/shopstack/shopbill/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE users (
			id BIGINT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'shop',
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE sessions (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			session_token_hash TEXT NOT NULL UNIQUE,
			user_agent TEXT,
			ip_address TEXT,
			expires_at TIMESTAMP NOT NULL,
			revoked_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			last_seen_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(7)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	cfg := config.Config{SessionTTLHours: 24}

	svc := authservice.New(authservice.Params{
		Cfg:      cfg,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Repo:     authrepo.Provide(db),
		Sessions: authrepo.ProvideSessions(db),
	})

	return &fixture{svc: svc, db: db, clock: fake}
}

func (f *fixture) register(t *testing.T, email, pass string, role domain.Role) *domain.User {
	t.Helper()
	user, err := f.svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    email,
		Password: pass,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	f.register(t, "owner@example.com", "secret123", domain.RoleShop)

	_, err := f.svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "Owner@Example.com",
		Password: "othersecret",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.register(t, "owner@example.com", "secret123", domain.RoleShop)

	result, err := f.svc.Login(ctx, domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.RawToken == "" {
		t.Fatal("expected a session token")
	}
	if result.User.ID != user.ID {
		t.Fatalf("logged in as %v, want %v", result.User.ID, user.ID)
	}

	session, err := f.svc.Authenticate(ctx, result.RawToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if session.UserID != user.ID {
		t.Fatalf("session user %v, want %v", session.UserID, user.ID)
	}

	if err := f.svc.Logout(ctx, result.RawToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := f.svc.Authenticate(ctx, result.RawToken); !errors.Is(err, domain.ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked after logout, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	f := newFixture(t)

	f.register(t, "owner@example.com", "secret123", domain.RoleShop)

	_, err := f.svc.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "not-the-password",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "owner@example.com", "secret123", domain.RoleShop)

	result, err := f.svc.Login(ctx, domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	f.clock.Advance(25 * time.Hour)

	if _, err := f.svc.Authenticate(ctx, result.RawToken); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Authenticate(context.Background(), "no-such-token"); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := f.svc.Authenticate(context.Background(), "  "); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for blank token, got %v", err)
	}
}
