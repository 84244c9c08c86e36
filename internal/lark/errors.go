package lark

import (
	"errors"
	"fmt"
)

// ErrAuth indicates that the tenant access-token exchange failed. Callers
// must treat it as a hard stop for the operation, not as an empty-permission
// token.
var ErrAuth = errors.New("lark: token exchange failed")

// ErrConfig indicates that a required Lark identifier is not configured.
var ErrConfig = errors.New("lark: missing configuration")

// APIError is an application-level rejection embedded in an otherwise
// successful HTTP response (a non-zero `code` in the envelope).
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lark: api error %d: %s", e.Code, e.Msg)
}
