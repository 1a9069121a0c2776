package steam

import (
	"errors"
	"fmt"
)

// Reason clasifica por qué falló la verificación de una assertion.
type Reason string

const (
	ReasonMissingParameter    Reason = "missing_parameter"
	ReasonCancelled           Reason = "cancelled"
	ReasonReturnToMismatch    Reason = "return_to_mismatch"
	ReasonProviderRejected    Reason = "provider_rejected"
	ReasonProviderUnreachable Reason = "provider_unreachable"
	ReasonMalformedIdentity   Reason = "malformed_identity"
)

var reasonText = map[Reason]string{
	ReasonMissingParameter:    "missing required OpenID parameter",
	ReasonCancelled:           "user cancelled the Steam login",
	ReasonReturnToMismatch:    "openid.return_to does not match this session",
	ReasonProviderRejected:    "Steam rejected the assertion",
	ReasonProviderUnreachable: "Steam could not be reached to verify the assertion",
	ReasonMalformedIdentity:   "claimed identity is not a valid SteamID",
}

// VerificationError es el único error que devuelve VerifyAssertion.
// Error() es seguro para mostrar al cliente: nunca incluye el error de transporte,
// que queda en Err para logs.
type VerificationError struct {
	Reason Reason
	Detail string
	Err    error
}

func (e *VerificationError) Error() string {
	msg := reasonText[e.Reason]
	if msg == "" {
		msg = string(e.Reason)
	}
	if e.Detail != "" {
		return msg + ": " + e.Detail
	}
	return msg
}

func (e *VerificationError) Unwrap() error { return e.Err }

func verifyErr(r Reason, detail string, cause error) *VerificationError {
	return &VerificationError{Reason: r, Detail: detail, Err: cause}
}

// IsVerificationError indica si err (o alguno de sus wrapped) es *VerificationError.
func IsVerificationError(err error) bool {
	var ve *VerificationError
	return errors.As(err, &ve)
}

// ErrPlayerNotFound: GetPlayerSummaries no devolvió jugadores para el SteamID.
var ErrPlayerNotFound = errors.New("steam: no player found for the given SteamID")

// UpstreamError envuelve cualquier falla de la Web API de Steam al armar el perfil.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("steam %s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("steam %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
