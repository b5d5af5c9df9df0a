package auth

import (
	"strconv"
	"strings"

	"github.com/paperlog/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Identity describes an authenticated caller.
type Identity struct {
	UserID   uint
	Username string
	Admin    bool
}

// Verifier decides whether a presented credential maps to a known identity.
// Every non-valid result is treated uniformly as unauthorized; callers never
// learn whether a credential was expired, malformed or simply unknown.
type Verifier interface {
	Verify(credential string) (Identity, bool)
}

// UserVerifier validates credentials against the local user table. The
// credential is the user id held by the session cookie.
type UserVerifier struct {
	db *gorm.DB
}

// NewUserVerifier creates a UserVerifier instance.
func NewUserVerifier(gdb *gorm.DB) *UserVerifier {
	return &UserVerifier{db: gdb}
}

// Verify resolves a session credential to an identity.
func (v *UserVerifier) Verify(credential string) (Identity, bool) {
	trimmed := strings.TrimSpace(credential)
	if trimmed == "" {
		return Identity{}, false
	}

	id, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return Identity{}, false
	}

	var user db.User
	if err := v.db.First(&user, uint(id)).Error; err != nil {
		return Identity{}, false
	}

	return Identity{UserID: user.ID, Username: user.Username, Admin: true}, true
}

// Authenticate checks a username/password pair at login time.
func (v *UserVerifier) Authenticate(username, password string) (Identity, bool) {
	var user db.User
	if err := v.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return Identity{}, false
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return Identity{}, false
	}

	return Identity{UserID: user.ID, Username: user.Username, Admin: true}, true
}
