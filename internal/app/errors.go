package service

import "errors"

// ErrNoSource is returned by Start and Reload when no ranking source is configured.
var ErrNoSource = errors.New("no ranking source configured")
