package constant

// Resources checked by the casbin enforcer as "role, resource, action".
const (
	PermTailorChannels      = "channels"
	PermTailorFilters       = "filters"
	PermTailorCredentials   = "credentials"
	PermTailorProfile       = "profile"
	PermTailorUsers         = "users"
	PermTailorSubscriptions = "subscriptions"
)

const (
	PermActRead  = "read"
	PermActWrite = "write"
)

// Roles carried in token or API-key claims.
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleScheduler = "scheduler"
)
