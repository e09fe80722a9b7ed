package admin

import "strings"

const DefaultRole = "user"

// User maps to the users table. The password hash never leaves the server.
type User struct {
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         string `db:"role" json:"role"`
}

// Credentials is the body of register and login requests.
type Credentials struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role,omitempty" validate:"max=20"`
}

func (c *Credentials) normalize() {
	c.Username = strings.TrimSpace(c.Username)
	c.Role = strings.TrimSpace(c.Role)
	if c.Role == "" {
		c.Role = DefaultRole
	}
}

// LoginResult is returned on a successful login. There is no session or
// token; the client keeps the user record.
type LoginResult struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}
