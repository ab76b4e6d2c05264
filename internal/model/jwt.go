package model

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by the upstream-issued access token. Username and Avatar
// are optional, the identity cache fills them in when the token omits them.
type Claims struct {
	UserId   int64   `json:"userId"`
	Username string  `json:"username,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}
