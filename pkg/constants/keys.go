package constants

// Context and header keys
const (
	ContextKeyUser      = "user"
	HeaderAuthorization = "Authorization"
)

// Standard response envelope keys
const (
	ResponseError = "error"
	FieldMessage  = "message"
)

// Pagination query parameters; list endpoints treat these as opaque
// pass-through to the repositories.
const (
	ParamPage       = "page"
	ParamPageSize   = "page_size"
	DefaultPageSize = 50
	MaxPageSize     = 200
)
