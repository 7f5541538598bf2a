package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCredentialStore struct {
	users     map[string]AuthUser
	lastLogin []string
}

func (f *fakeCredentialStore) FindActiveUserByEmail(_ context.Context, email string) (AuthUser, error) {
	user, ok := f.users[email]
	if !ok {
		return AuthUser{}, errors.New("no rows")
	}
	return user, nil
}

func (f *fakeCredentialStore) UpdateLastLogin(_ context.Context, userID string) error {
	f.lastLogin = append(f.lastLogin, userID)
	return nil
}

func TestLoginIssuesParsableToken(t *testing.T) {
	hash, err := HashPassword("Secret123")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	store := &fakeCredentialStore{users: map[string]AuthUser{
		"rep@example.com": {ID: "u1", RoleName: RoleEmployee, Password: hash},
	}}
	svc := NewService(store, "test-secret", time.Hour)

	result, err := svc.Login(context.Background(), " Rep@Example.com ", "Secret123")
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	claims, err := ParseToken("test-secret", result.Token)
	if err != nil {
		t.Fatalf("token parse error: %v", err)
	}
	if claims.UserID != "u1" || claims.RoleName != RoleEmployee {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(store.lastLogin) != 1 {
		t.Fatalf("expected last login update, got %v", store.lastLogin)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hash, _ := HashPassword("Secret123")
	store := &fakeCredentialStore{users: map[string]AuthUser{
		"rep@example.com": {ID: "u1", RoleName: RoleEmployee, Password: hash},
	}}
	svc := NewService(store, "test-secret", time.Hour)

	if _, err := svc.Login(context.Background(), "rep@example.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ghost@example.com", "Secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	token, err := GenerateToken("a", Claims{UserID: "u1", RoleName: RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("b", token); err == nil {
		t.Fatal("expected parse failure with a different secret")
	}
}

func TestRolePermissions(t *testing.T) {
	perms := RolePermissionStore{}
	if perms.HasPermission(RoleEmployee, PermLeaveApprove) {
		t.Fatal("employees must not approve leave")
	}
	if !perms.HasPermission(RoleManager, PermAttendanceTeam) {
		t.Fatal("managers should read team attendance")
	}
	if !perms.HasPermission(RoleAdmin, PermMetricsRead) {
		t.Fatal("admins should read metrics")
	}
}
