package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"

	// ReplayTransportError represents a failed fetch against the upstream bar provider.
	ReplayTransportError ErrorCode = "replay_transport_error"
	// ReplayExhausted is raised when no further pages exist and the cursor caught up.
	ReplayExhausted ErrorCode = "replay_exhausted"
	// ReplayBoundary is raised when stepping back at the first bar.
	ReplayBoundary ErrorCode = "replay_boundary"
	// ReplayNotReady is raised when playback is requested before the lookback page resolved.
	ReplayNotReady ErrorCode = "replay_not_ready"
	// ReplayInvalidInterval represents an interval outside the supported set.
	ReplayInvalidInterval ErrorCode = "replay_invalid_interval"
	// ReplayInvalidSpeed represents a speed outside 1..10 bars per second.
	ReplayInvalidSpeed ErrorCode = "replay_invalid_speed"
	// ReplayInvalidTicker represents an empty ticker.
	ReplayInvalidTicker ErrorCode = "replay_invalid_ticker"

	// UpstreamDecodeError represents a provider payload that could not be decoded.
	UpstreamDecodeError ErrorCode = "upstream_decode_error"
	// UpstreamStatusError represents a non 2xx provider response.
	UpstreamStatusError ErrorCode = "upstream_status_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisDelError represents an error when deleting a value from Redis.
	RedisDelError ErrorCode = "redis_del_error"

	// QuestDBQueryError represents a failed QuestDB query.
	QuestDBQueryError ErrorCode = "questdb_query_error"
	// QuestDBMigrationError represents a migration that could not be loaded, applied or reverted.
	QuestDBMigrationError ErrorCode = "questdb_migration_error"
)

var (
	// ErrExhausted is returned when playback caught up and there is no more data to load.
	ErrExhausted = NewErrorDetails("No more data to load", string(ReplayExhausted), "cursor")
	// ErrBoundary is returned when stepping back at cursor 0.
	ErrBoundary = NewErrorDetails("You can't go back anymore", string(ReplayBoundary), "cursor")
	// ErrNotReady is returned when play is requested before the lookback window is loaded.
	ErrNotReady = NewErrorDetails("lookback window is not loaded yet", string(ReplayNotReady), "lookback")
)
