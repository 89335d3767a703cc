package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"coach_backend/internal/config"
	"coach_backend/internal/repository"
	"coach_backend/internal/util"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthService(repository.NewUserRepository(f.db), &config.JWTConfig{
		Secret:     "auth-test-secret-0123456789abcdefgh",
		ExpireTime: time.Hour,
	})
	ctx := context.Background()

	user, err := auth.Register(ctx, RegisterInput{Name: " Ada ", Email: "Ada@Example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "ada@example.com" || user.Name != "Ada" || user.Password == "correct-horse" {
		t.Fatalf("registered user = %+v", user)
	}

	if _, err := auth.Register(ctx, RegisterInput{Name: "x", Email: "ada@example.com", Password: "another-one"}); !errors.Is(err, util.ErrEmailRegistered) {
		t.Fatalf("duplicate Register() error = %v", err)
	}

	token, got, err := auth.Login(ctx, "ADA@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	claims, err := util.ParseJWT(token, auth.Cfg.Secret)
	if err != nil || claims.UserID != got.ID {
		t.Fatalf("token claims = %+v, err %v", claims, err)
	}

	if _, _, err := auth.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, util.ErrInvalidLogin) {
		t.Fatalf("bad password error = %v", err)
	}
	if _, _, err := auth.Login(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, util.ErrInvalidLogin) {
		t.Fatalf("unknown email error = %v", err)
	}
}

func newUserService(t *testing.T, f *fixture) (*UserService, string) {
	t.Helper()
	root := t.TempDir()
	storage := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: root})
	return NewUserService(repository.NewUserRepository(f.db), storage), root
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	users, _ := newUserService(t, f)
	ctx := context.Background()

	got, err := users.UpdateProfile(ctx, f.user.ID, ProfileUpdate{Bio: ptr("runner"), Timezone: ptr("Europe/Berlin")})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if got.Bio != "runner" || got.Timezone != "Europe/Berlin" || got.Name != f.user.Name {
		t.Fatalf("profile = %+v", got)
	}

	if _, err := users.UpdateProfile(ctx, f.user.ID, ProfileUpdate{Timezone: ptr("Mars/Olympus")}); util.KindOf(err) != util.KindInvalidInput {
		t.Fatalf("bad timezone error = %v", err)
	}
}

func TestUploadAvatar(t *testing.T) {
	f := newFixture(t)
	users, root := newUserService(t, f)
	ctx := context.Background()

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	got, err := users.UploadAvatar(ctx, f.user.ID, "Me.PNG", bytes.NewReader(png), int64(len(png)))
	if err != nil {
		t.Fatalf("UploadAvatar() error = %v", err)
	}
	if !strings.HasPrefix(got.AvatarURL, "/uploads/") || !strings.HasSuffix(got.AvatarURL, ".png") {
		t.Fatalf("avatar url = %q", got.AvatarURL)
	}
	stored, err := os.ReadFile(filepath.Join(root, strings.TrimPrefix(got.AvatarURL, "/uploads/")))
	if err != nil || !bytes.Equal(stored, png) {
		t.Fatalf("stored avatar mismatch: %v", err)
	}

	text := []byte("definitely not an image")
	if _, err := users.UploadAvatar(ctx, f.user.ID, "a.png", bytes.NewReader(text), int64(len(text))); util.KindOf(err) != util.KindInvalidInput {
		t.Fatalf("text avatar error = %v", err)
	}
	if _, err := users.UploadAvatar(ctx, f.user.ID, "a.png", bytes.NewReader(png), util.MaxAvatarSize+1); util.KindOf(err) != util.KindInvalidInput {
		t.Fatalf("oversized avatar error = %v", err)
	}
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	p := &LocalStorageProvider{Root: t.TempDir()}
	if _, err := p.Upload(context.Background(), "../outside.txt", strings.NewReader("x"), 1, "text/plain"); err == nil {
		t.Fatal("Upload() accepted a key outside the root")
	}
}
