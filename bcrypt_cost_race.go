//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// race builds are slow enough that cost 12 makes the suite time out
func passwordHashCost() int {
	return bcrypt.DefaultCost
}
