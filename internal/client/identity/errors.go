package identity

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/studysync/internal/common"
)

// ProviderError is an error response from the identity provider. Code is the
// provider's machine-readable code, e.g. EMAIL_NOT_FOUND.
type ProviderError struct {
	StatusCode int
	Code       string
	kind       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider: %s (%s)", e.kind, e.Code)
}

func (e *ProviderError) Unwrap() error {
	return e.kind
}

// parseProviderError decodes {"error":{"message":"CODE : text"}} bodies.
func parseProviderError(status int, body []byte) *ProviderError {
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	code := ""
	if err := json.Unmarshal(body, &env); err == nil {
		code = env.Error.Message
	}
	if i := strings.Index(code, " "); i >= 0 {
		code = code[:i]
	}
	code = strings.TrimSpace(code)
	return &ProviderError{StatusCode: status, Code: code, kind: mapProviderError(status, code)}
}

func mapProviderError(status int, code string) error {
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_IDP_RESPONSE", "MISSING_PASSWORD":
		return common.ErrInvalidCredentials
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return common.ErrInvalidEmail
	case "USER_DISABLED":
		return common.ErrAccountDisabled
	case "TOO_MANY_ATTEMPTS_TRY_LATER", "QUOTA_EXCEEDED":
		return common.ErrRateLimited
	case "EMAIL_EXISTS":
		return common.ErrEmailInUse
	case "WEAK_PASSWORD":
		return common.ErrWeakPassword
	case "TOKEN_EXPIRED", "INVALID_ID_TOKEN", "INVALID_REFRESH_TOKEN", "USER_NOT_FOUND", "CREDENTIAL_TOO_OLD_LOGIN_AGAIN":
		return common.ErrUnauthenticated
	}
	switch {
	case status == http.StatusTooManyRequests:
		return common.ErrRateLimited
	case status >= 500:
		return common.ErrServer
	default:
		return common.ErrValidation
	}
}
