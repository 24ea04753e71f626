package snsctx

import (
	"context"
	"encoding/hex"
	"log/slog"
)

type ctxIndex int

const ctxIndexVerbose ctxIndex = iota

func IsVerbose(ctx context.Context) bool {
	val, ok := ctx.Value(ctxIndexVerbose).(bool)
	return ok && val
}

func SetVerbose(ctx context.Context, value bool) context.Context {
	return context.WithValue(ctx, ctxIndexVerbose, value)
}

// Dump logs a hex dump of a raw frame at debug level when ctx is verbose.
func Dump(ctx context.Context, logger *slog.Logger, msg string, frame []byte) {
	if !IsVerbose(ctx) {
		return
	}
	logger.DebugContext(ctx, msg, "len", len(frame), "frame", hex.EncodeToString(frame))
}
