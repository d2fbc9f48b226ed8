package types

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderTenantID      = "X-Tenant-ID"
	HeaderEnvironmentID = "X-Environment-ID"
	HeaderAuthorization = "Authorization"
)
