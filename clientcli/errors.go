package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrUserIDRequired = errors.New("user id is required")
	ErrConfigRequired = errors.New("config is required")
)

// Errors for input validation.
var (
	ErrEmptyPath   = errors.New("path is required")
	ErrEmptyFileID = errors.New("file id is required")
	ErrEmptyURL    = errors.New("signed url is required")
	ErrInvalidTTL  = errors.New("ttl must be at least one second")
)
