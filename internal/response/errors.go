package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation    ErrCode = "VALIDATION_ERROR"
	ErrUnknownSchool ErrCode = "UNKNOWN_SCHOOL"
	ErrInvalidSort   ErrCode = "INVALID_SORT_KEY"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrNoData   ErrCode = "NO_DATA"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Parámetros inválidos. Revise los filtros seleccionados."
	case ErrUnknownSchool:
		return "La escuela seleccionada no existe."
	case ErrInvalidSort:
		return "Criterio de orden no válido."
	case ErrNotFound:
		return "Recurso no encontrado."
	case ErrNoData:
		return "No hay datos para mostrar."
	case ErrRateLimitExceeded:
		return "Demasiadas solicitudes. Intente nuevamente más tarde."
	case ErrInternal:
		return "Ocurrió un error interno del servidor."
	default:
		return "Ocurrió un error inesperado."
	}
}
