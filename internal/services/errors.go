package services

import "errors"

// Common service errors
var (
	ErrNotFound      = errors.New("registro no encontrado")
	ErrDuplicate     = errors.New("registro duplicado")
	ErrInvalidState  = errors.New("transición de estado inválida")
	ErrInvalidPeriod = errors.New("periodo inválido, se espera YYYY-MM")
	ErrInUse         = errors.New("el registro tiene contratos asociados")
)
