package domain

import "errors"

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrInsufficientStock = errors.New("insufficient stock") // 400
	ErrInvalidCategory   = errors.New("invalid category")   // 400
	ErrUnauthorized      = errors.New("unauthorized")       // 401
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 409
)
