// Package ctxkeys names the fiber Locals shared between middlewares and handlers.
package ctxkeys

const (
	UserIDKey    = "userID"
	UserEmailKey = "userEmail"
	UsernameKey  = "username"
	ParentCtxKey = "parentCtx"
)
