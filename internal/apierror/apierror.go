package apierror

import "net/http"

// Error is a request-scoped API error. Handlers return it and the echo
// error handler converts it to a {"msg": ...} JSON response.
type Error struct {
	StatusCode int
	Msg        string
}

func (e *Error) Error() string {
	return e.Msg
}

func New(statusCode int, msg string) *Error {
	return &Error{StatusCode: statusCode, Msg: msg}
}

func BadRequest(msg string) *Error {
	return New(http.StatusBadRequest, msg)
}

func Unauthenticated(msg string) *Error {
	return New(http.StatusUnauthorized, msg)
}

func Unauthorized(msg string) *Error {
	return New(http.StatusForbidden, msg)
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, msg)
}
