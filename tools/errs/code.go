package errs

// Business codes. Handshake failures (token) refuse the connection
// outright; everything else is scoped to the offending event.
const (
	ServerInternalError = 500

	ArgsError         = 1001 // empty body, malformed ids
	TokenInvalidError = 1101 // missing/bad credential at handshake
	NoPermissionError = 1102 // authenticated but not a participant / wrong room
	RecordNotFound    = 1201 // conversation or user does not exist
	StorageError      = 1301 // append/lookup against the store failed
)

var (
	ErrInternalServer = NewCodeError(ServerInternalError, "server internal error")
	ErrArgs           = NewCodeError(ArgsError, "args error")
	ErrTokenInvalid   = NewCodeError(TokenInvalidError, "token invalid")
	ErrNoPermission   = NewCodeError(NoPermissionError, "no permission")
	ErrRecordNotFound = NewCodeError(RecordNotFound, "record not found")
	ErrStorage        = NewCodeError(StorageError, "storage error")
)
