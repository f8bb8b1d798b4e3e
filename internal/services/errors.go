package services

import "errors"

// Pipeline service errors
var (
	ErrRefreshRunning  = errors.New("refresh already running")
	ErrNoSnapshot      = errors.New("no analysis snapshot available")
	ErrUnknownSource   = errors.New("unknown data source")
	ErrUnknownFormat   = errors.New("unknown combined format")
	ErrSymbolNotFound  = errors.New("symbol not found")
)
