package config

import "errors"

// Validation errors returned by [Config.Validate]
var (
	ErrInvalidInterruptConfig = errors.New("invalid interrupt configuration")
	ErrInvalidClipboardConfig = errors.New("invalid clipboard configuration")
	ErrInvalidSuggestConfig   = errors.New("invalid password suggestion configuration")
	ErrInvalidLogLevel        = errors.New("invalid log level")
)
