package secret

import "errors"

// Sentinel errors for secret resolution.
var (
	ErrMissingEnv            = errors.New("secret: missing required environment variables")
	ErrInvalidRef            = errors.New("secret: invalid secret reference")
	ErrProviderNotRegistered = errors.New("secret: provider not registered")
	ErrDuplicateProvider     = errors.New("secret: provider already registered")
	ErrEmptySecret           = errors.New("secret: provider returned empty value")
	ErrSecretNotFound        = errors.New("secret: not found")
)
