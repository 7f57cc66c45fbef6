package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/listshare/todo-share/internal/core/domain"
)

// Credentials hashes and verifies passwords with bcrypt.
type Credentials struct {
	cost int
	// dummyHash is compared against when the user does not exist so lookups
	// for unknown usernames take as long as a wrong password.
	dummyHash []byte
}

// NewCredentials returns Credentials using cost, or bcrypt.DefaultCost when
// cost is out of bcrypt's accepted range.
func NewCredentials(cost int) *Credentials {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		panic("credentials: cannot build dummy hash: " + err.Error())
	}
	return &Credentials{cost: cost, dummyHash: dummy}
}

func (c *Credentials) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the user's stored verifier.
// A nil user always fails, after paying the same bcrypt cost.
func (c *Credentials) Verify(user *domain.User, password string) bool {
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// IssuePrincipal wraps a verified user as the session subject.
func (c *Credentials) IssuePrincipal(user *domain.User) domain.Principal {
	return domain.Principal{UserID: user.ID, Username: user.Username}
}
