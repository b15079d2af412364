package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
)

type fakeUsers struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[email], nil
}

const testSecret = "JBSWY3DPEHPK3PXP"

func newFakeUsers(t *testing.T) *fakeUsers {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	secret := testSecret
	return &fakeUsers{users: map[string]*models.User{
		"admin@example.com": {
			ID: uuid.New(), Email: "admin@example.com", PasswordHash: string(hash),
		},
		"totp@example.com": {
			ID: uuid.New(), Email: "totp@example.com", PasswordHash: string(hash),
			TOTPSecret: &secret, TOTPEnabled: true,
		},
	}}
}

func TestVerifySuccess(t *testing.T) {
	users := newFakeUsers(t)
	v := NewVerifier(users)

	id, err := v.Verify(context.Background(), "  Admin@Example.com ", "correct-horse", "")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	want := users.users["admin@example.com"]
	if id.UserID != want.ID || id.Email != want.Email {
		t.Errorf("identity: got %+v, want id=%s email=%s", id, want.ID, want.Email)
	}
}

// Unknown email and wrong password must be indistinguishable.
func TestVerifyRejectionsIdentical(t *testing.T) {
	v := NewVerifier(newFakeUsers(t))
	ctx := context.Background()

	_, errUnknown := v.Verify(ctx, "nobody@example.com", "whatever", "")
	_, errWrong := v.Verify(ctx, "admin@example.com", "wrong-password", "")

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", errUnknown)
	}
	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Errorf("messages differ: %q vs %q", errUnknown, errWrong)
	}
}

func TestVerifyEmptyInput(t *testing.T) {
	v := NewVerifier(newFakeUsers(t))
	tests := []struct{ email, password string }{
		{"", "correct-horse"},
		{"admin@example.com", ""},
		{"   ", "   "},
	}
	for _, tt := range tests {
		if _, err := v.Verify(context.Background(), tt.email, tt.password, ""); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Verify(%q, %q): got %v", tt.email, tt.password, err)
		}
	}
}

func TestVerifyLookupError(t *testing.T) {
	boom := errors.New("db down")
	v := NewVerifier(&fakeUsers{err: boom})

	_, err := v.Verify(context.Background(), "admin@example.com", "x", "")
	if !errors.Is(err, boom) {
		t.Errorf("expected lookup error to propagate, got %v", err)
	}
}

func TestVerifySecondFactor(t *testing.T) {
	v := NewVerifier(newFakeUsers(t))
	ctx := context.Background()

	code, err := totp.GenerateCode(testSecret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	if _, err := v.Verify(ctx, "totp@example.com", "correct-horse", code); err != nil {
		t.Errorf("valid code: %v", err)
	}
	if _, err := v.Verify(ctx, "totp@example.com", "correct-horse", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("missing code: got %v", err)
	}
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	if _, err := v.Verify(ctx, "totp@example.com", "correct-horse", wrong); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong code: got %v", err)
	}
	if _, err := v.Verify(ctx, "totp@example.com", "wrong", code); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password with valid code: got %v", err)
	}
}
