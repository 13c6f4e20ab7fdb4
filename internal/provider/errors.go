package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch matches every *FetchError.
	ErrFetch = errors.New("provider fetch failed")
	// ErrAuth matches every *AuthError.
	ErrAuth = errors.New("provider authentication failed")
)

// FetchError is a failed transfer: a transport error or a non-2xx status.
type FetchError struct {
	Provider string
	Source   string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: fetch %s: upstream returned status %d", e.Provider, e.Source, e.Status)
	}
	return fmt.Sprintf("%s: fetch %s: %v", e.Provider, e.Source, e.Err)
}

func (e *FetchError) Is(target error) bool { return target == ErrFetch }
func (e *FetchError) Unwrap() error        { return e.Err }

// AuthReason tells the authentication failures apart.
type AuthReason string

const (
	ReasonMissingCredentials AuthReason = "missing_credentials"
	ReasonNoSessionCookie    AuthReason = "no_session_cookie"
	ReasonInvalidSession     AuthReason = "invalid_session"
)

// AuthError is a failed session: no credentials configured, credentials
// rejected (no cookie issued), or a session the server no longer honours.
type AuthError struct {
	Provider string
	Reason   AuthReason
	Status   int
}

func (e *AuthError) Error() string {
	switch e.Reason {
	case ReasonMissingCredentials:
		return fmt.Sprintf("%s: credenciales no configuradas", e.Provider)
	case ReasonNoSessionCookie:
		return fmt.Sprintf("%s: login sin cookie de sesion (status %d), credenciales invalidas", e.Provider, e.Status)
	case ReasonInvalidSession:
		return fmt.Sprintf("%s: sesion invalida o expirada, el servidor devolvio HTML", e.Provider)
	default:
		return fmt.Sprintf("%s: autenticacion fallida (%s)", e.Provider, e.Reason)
	}
}

func (e *AuthError) Is(target error) bool { return target == ErrAuth }
