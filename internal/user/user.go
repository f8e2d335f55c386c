package user

import (
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Hash      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName returns the display name for the user.
func (u *User) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

// Validate checks the user fields required at registration time.
func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if !usernameRe.MatchString(u.Username) {
		return fmt.Errorf("username may only contain letters, digits and @/./+/-/_")
	}
	if u.FirstName == "" || u.LastName == "" {
		return fmt.Errorf("first and last name are required")
	}
	return nil
}

// HashPassword hashes the cleartext password onto the user.
func (u *User) HashPassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.Hash = string(hash)
	return nil
}

// CheckPassword reports whether the cleartext password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) == nil
}
