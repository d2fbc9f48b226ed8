package types

import "context"

type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxTenantID      ContextKey = "ctx_tenant_id"
	CtxEnvironmentID ContextKey = "ctx_environment_id"
	CtxUserID        ContextKey = "ctx_user_id"
)

// Defaults used by scripts and tests that do not carry real identities.
const (
	DefaultTenantID      = "00000000-0000-0000-0000-000000000000"
	DefaultEnvironmentID = "00000000-0000-0000-0000-000000000000"
	DefaultUserID        = "00000000-0000-0000-0000-000000000000"
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, CtxTenantID, tenantID)
}

func SetEnvironmentID(ctx context.Context, environmentID string) context.Context {
	return context.WithValue(ctx, CtxEnvironmentID, environmentID)
}

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

func GetRequestID(ctx context.Context) string {
	return ctxValueString(ctx, CtxRequestID)
}

func GetTenantID(ctx context.Context) string {
	return ctxValueString(ctx, CtxTenantID)
}

func GetEnvironmentID(ctx context.Context) string {
	return ctxValueString(ctx, CtxEnvironmentID)
}

func GetUserID(ctx context.Context) string {
	return ctxValueString(ctx, CtxUserID)
}

func ctxValueString(ctx context.Context, key ContextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
