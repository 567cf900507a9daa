package middleware

import (
	"context"

	"github.com/linkcart/b2b-backend/pkg/authz"
)

type contextKey string

const (
	ctxEmail  contextKey = "user_email"
	ctxTenant contextKey = "tenant_context"
)

// EmailFromContext returns the authenticated email set by Auth.
func EmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxEmail).(string); ok {
		return v
	}
	return ""
}

// WithEmail injects the authenticated email into the context.
func WithEmail(ctx context.Context, email string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxEmail, email)
}

// TenantFromContext returns the resolved tenant context set by Tenant.
// The zero value (anonymous, lowest tier) comes back when the resolver
// never ran, so guards downstream deny by default.
func TenantFromContext(ctx context.Context) authz.TenantContext {
	if ctx == nil {
		return authz.Anonymous()
	}
	if v, ok := ctx.Value(ctxTenant).(authz.TenantContext); ok {
		return v
	}
	return authz.Anonymous()
}

// WithTenant injects the tenant context for downstream handlers.
func WithTenant(ctx context.Context, tc authz.TenantContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTenant, tc)
}
