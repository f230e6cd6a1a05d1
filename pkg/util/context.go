package util

import (
	"context"
)

type key string

const (
	sessionIDKey = key("session-id")
	tickerKey    = key("ticker")
)

// Fields returns the replay related key-value pairs stored in ctx.
func Fields(ctx context.Context) map[string]interface{} {
	mapFields := make(map[string]interface{})
	mapFields["request_id"] = GetRequestID(ctx)
	mapFields["session_id"] = GetSessionID(ctx)
	if ticker := GetTicker(ctx); ticker != "" {
		mapFields["ticker"] = ticker
	}

	return mapFields
}

// WithSessionID returns a context carrying the replay session id.
// A new id is generated when id is empty.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = generate()
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// WithTicker returns a context carrying the ticker being replayed.
func WithTicker(ctx context.Context, ticker string) context.Context {
	return context.WithValue(ctx, tickerKey, ticker)
}

// GetSessionID returns the session id from context, empty if not present.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// GetTicker returns the ticker from context, empty if not present.
func GetTicker(ctx context.Context) string {
	ticker, _ := ctx.Value(tickerKey).(string)
	return ticker
}
