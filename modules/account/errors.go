package account

import (
	"errors"
	"net/http"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/authz"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/oauth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/ratelimiter"
)

// Error codes carried in ErrorDetail.Code and in the ?error= parameter of
// OAuth redirects.
const (
	CodeUsernameTaken      = "username_taken"
	CodeEmailTaken         = "email_taken"
	CodeValidationFailed   = "validation_failed"
	CodeMalformedBody      = "malformed_body"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUnauthenticated    = "unauthenticated"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeStoreUnavailable   = "store_unavailable"
	CodeUnknownProvider    = "unknown_provider"
	CodeInvalidState       = "invalid_state"
	CodeInvalidCode        = "invalid_code"
	CodeUnverifiedEmail    = "unverified_email"
	CodeMissingEmail       = "missing_email"
	CodeProviderError      = "provider_error"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal_error"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{auth.ErrUsernameTaken, http.StatusBadRequest, CodeUsernameTaken, "Username is already taken"},
	{auth.ErrEmailTaken, http.StatusBadRequest, CodeEmailTaken, "Email is already in use"},
	{auth.ErrValidation, http.StatusBadRequest, CodeValidationFailed, "Request validation failed"},
	{errMalformedBody, http.StatusBadRequest, CodeMalformedBody, "Request body must be valid JSON"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password"},
	{auth.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated, "Authentication required"},
	{auth.ErrUserNotFound, http.StatusNotFound, CodeNotFound, "User not found"},
	{auth.ErrStoreUnavailable, http.StatusServiceUnavailable, CodeStoreUnavailable, "Service temporarily unavailable"},
	{oauth.ErrUnknownProvider, http.StatusNotFound, CodeUnknownProvider, "Unknown identity provider"},
	{oauth.ErrInvalidState, http.StatusBadRequest, CodeInvalidState, "Login session expired, please try again"},
	{oauth.ErrInvalidCode, http.StatusBadRequest, CodeInvalidCode, "Authorization code rejected by provider"},
	{oauth.ErrUnverifiedEmail, http.StatusForbidden, CodeUnverifiedEmail, "Provider email is not verified"},
	{auth.ErrMissingEmail, http.StatusBadRequest, CodeMissingEmail, "Email is required"},
	{oauth.ErrProviderAPI, http.StatusBadGateway, CodeProviderError, "Identity provider request failed"},
	{oauth.ErrMissingProfileID, http.StatusBadGateway, CodeProviderError, "Identity provider request failed"},
	{auth.ErrMissingProviderID, http.StatusBadGateway, CodeProviderError, "Identity provider request failed"},
}

// errorDetail maps err to a status and envelope. Unknown errors become 500
// without exposing the cause.
func errorDetail(err error) (int, *ErrorDetail) {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		details := make(map[string][]string, len(verr.Fields))
		for _, f := range verr.Fields {
			details[f.Field] = append(details[f.Field], f.Message)
		}
		return http.StatusBadRequest, &ErrorDetail{
			Code:    CodeValidationFailed,
			Message: "Request validation failed",
			Details: details,
		}
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, &ErrorDetail{Code: m.code, Message: m.message}
		}
	}
	return http.StatusInternalServerError, &ErrorDetail{Code: CodeInternal, Message: "Internal server error"}
}

// deniedHandler renders authz decisions in the response envelope.
func deniedHandler(w http.ResponseWriter, _ *http.Request, d authz.Decision) {
	if d == authz.Unauthenticated {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		writeErrorDetail(w, http.StatusUnauthorized, &ErrorDetail{Code: CodeUnauthenticated, Message: "Authentication required"})
		return
	}
	writeErrorDetail(w, http.StatusForbidden, &ErrorDetail{Code: CodeForbidden, Message: "Access denied"})
}

func limitedHandler(w http.ResponseWriter, _ *http.Request, _ ratelimiter.Result) {
	writeErrorDetail(w, http.StatusTooManyRequests, &ErrorDetail{Code: CodeRateLimited, Message: "Too many attempts, try again later"})
}
