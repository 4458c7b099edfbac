package errors

// 공통 에러 코드 정의
const (
	ErrInternal           = "INTERNAL"
	ErrNotFound           = "NOT_FOUND"
	ErrInvalidArgument    = "INVALID_ARGUMENT"
	ErrUnauthenticated    = "UNAUTHENTICATED"
	ErrUnauthorized       = "UNAUTHORIZED"
	ErrConflict           = "CONFLICT"
	ErrFailedPrecondition = "FAILED_PRECONDITION"
	ErrTimeout            = "TIMEOUT"
	ErrUnavailable        = "UNAVAILABLE"
	ErrNotImplemented     = "NOT_IMPLEMENTED"
)
