package model

// Identity is the authenticated actor passed explicitly into the engine.
// It is resolved once by the auth middleware, never read from ambient state.
type Identity struct {
	UserId   int64   `json:"user_id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar,omitempty"`
}
