package service

import "time"

// Timeout constants for service operations
const (
	// DefaultPackageManagerTimeout is the timeout for package manager
	// invocations such as version bumps
	DefaultPackageManagerTimeout = 60 * time.Second
)
