package constants

// HTTP and API constants
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"

	BearerPrefix = "Bearer "

	ResponseError = "error"
	FieldMessage  = "message"
)

// Context keys
const (
	ContextKeyUser  = "user"
	ContextKeyToken = "token"
)

// Query parameter defaults
const (
	DefaultLimit    = 25
	DefaultMaxLimit = 1000
)
