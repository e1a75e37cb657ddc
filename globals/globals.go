package globals

import "os"

var JwtSecret = []byte("dev-only-secret")

func init() {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		JwtSecret = []byte(s)
	}
}

// Context keys
type ContextKey string

const RoleKey ContextKey = "role"
const UserIDKey ContextKey = "userId"
