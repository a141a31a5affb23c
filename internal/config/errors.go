package config

import "errors"

var (
	ErrInvalidSpeed        = errors.New("speed must be positive")
	ErrInvalidRate         = errors.New("rate must be positive")
	ErrInvalidCurve        = errors.New("invalid gravity curve")
	ErrInvalidFallingScale = errors.New("falling gravity scale must be positive")
	ErrInvalidCapsule      = errors.New("capsule dimensions must be positive")
	ErrInvalidIK           = errors.New("ik distances must be positive")
	ErrInvalidTickRate     = errors.New("tick rate must be positive")
	ErrInvalidAudio        = errors.New("invalid audio settings")
)
