package token

import "context"

// Token is an opaque short-lived bearer credential.
type Token string

type Provider interface {
	CurrentToken() (Token, bool)
	Refresh(ctx context.Context) error
	Invalidate()
}
