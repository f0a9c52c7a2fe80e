package entity

// User is a registered marketplace account.
// HashedPassword holds a bcrypt hash; the plaintext is never stored.
type User struct {
	ID             int64
	Username       string
	HashedPassword string
}
