package auth

import "context"

type contextKey string

const (
	contextKeyClaims contextKey = "auth.claims"
)

// WithClaims stores validated claims in context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKeyClaims, claims)
}

// ClaimsFromContext extracts claims stored by the middleware.
func ClaimsFromContext(ctx context.Context) *Claims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(contextKeyClaims).(*Claims)
	return claims
}

// RoleFromContext extracts the caller role.
func RoleFromContext(ctx context.Context) Role {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	role, _ := ParseRole(claims.Role)
	return role
}

// CheckSubject returns ErrSubjectDenied when the caller's token is scoped
// to another subject. Requests without claims are not restricted.
func CheckSubject(ctx context.Context, subjectID string) error {
	claims := ClaimsFromContext(ctx)
	if claims == nil || claims.AllowsSubject(subjectID) {
		return nil
	}
	return ErrSubjectDenied
}
