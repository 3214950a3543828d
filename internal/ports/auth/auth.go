package auth

import "context"

// Claims es lo que el servicio necesita del token: quién es el usuario y, si viene, su email.
type Claims struct {
	UserID string
	Email  string
	Name   string
}

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
