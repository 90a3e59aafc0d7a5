package config

import "errors"

// Sentinel errors for configuration.
var (
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
	ErrInvalid           = errors.New("config: invalid configuration")
)
