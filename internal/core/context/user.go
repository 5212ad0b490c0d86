// Package context provides request-scoped value extraction.
package context

import (
	"context"
)

// Perfil names the role an authenticated user acts under.
type Perfil string

const (
	PerfilEmpresa  Perfil = "empresa"
	PerfilVendedor Perfil = "vendedor"
	PerfilSolo     Perfil = "solo"
)

// UserContext contains authenticated user information.
// EmpresaID is the owning tenant for empresa/vendedor profiles;
// solo users are their own tenant and EmpresaID stays empty.
type UserContext struct {
	UserID     string
	EmpresaID  string
	VendedorID string
	Email      string
	Perfil     Perfil
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetEmpresaID returns the tenant company ID from context or empty string.
func GetEmpresaID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.EmpresaID
	}
	return ""
}

// HasPerfil checks whether the authenticated user acts under the given profile.
func HasPerfil(ctx context.Context, p Perfil) bool {
	u := GetUser(ctx)
	return u != nil && u.Perfil == p
}
