package constants

import "time"

const (
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	ExternalAPITimeout = 10 * time.Second
	ShutdownTimeout    = 5 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

const (
	SheetSyncRetries      = 3
	SheetSyncRetryBackoff = 500 * time.Millisecond
)
