package oauth

import "errors"

var (
	ErrMissingCredentials = errors.New("discord oauth client id/secret not configured")
	ErrTokenExchange      = errors.New("discord token exchange failed")
	ErrIdentityFetch      = errors.New("discord identity fetch failed")
)
