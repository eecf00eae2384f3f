package services

import (
	"context"
	"log/slog"
	"time"
)

type MatchLogger struct {
	logger *slog.Logger
}

func NewMatchLogger(logger *slog.Logger) MatchLoggerInterface {
	return &MatchLogger{
		logger: logger,
	}
}

func (ml *MatchLogger) LogMatchCompleted(ctx context.Context, operation, query string, matchCount int, duration time.Duration) {
	ml.logger.DebugContext(ctx, "match completed",
		slog.String("event_type", "match_completed"),
		slog.String("operation", operation),
		slog.String("query", query),
		slog.Int("match_count", matchCount),
		slog.Int64("duration_us", duration.Microseconds()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (ml *MatchLogger) LogSlowMatch(ctx context.Context, operation string, duration time.Duration, candidateCount int) {
	ml.logger.WarnContext(ctx, "slow match",
		slog.String("event_type", "slow_match"),
		slog.String("operation", operation),
		slog.Int64("duration_ms", duration.Milliseconds()),
		slog.Int("candidate_count", candidateCount),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (ml *MatchLogger) LogMatchTimeout(ctx context.Context, operation, query string, timeout time.Duration) {
	ml.logger.WarnContext(ctx, "match timed out",
		slog.String("event_type", "match_timeout"),
		slog.String("operation", operation),
		slog.String("query", query),
		slog.Int64("timeout_ms", timeout.Milliseconds()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (ml *MatchLogger) LogMatchFailed(ctx context.Context, operation, query, errorMsg string) {
	ml.logger.ErrorContext(ctx, "match failed",
		slog.String("event_type", "match_failed"),
		slog.String("operation", operation),
		slog.String("query", query),
		slog.String("error", errorMsg),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (ml *MatchLogger) LogCacheFailure(ctx context.Context, operation string, err error) {
	ml.logger.WarnContext(ctx, "match cache failure",
		slog.String("event_type", "cache_failure"),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (ml *MatchLogger) LogHealthCheckFailed(ctx context.Context, reason string) {
	ml.logger.ErrorContext(ctx, "matcher health check failed",
		slog.String("event_type", "matcher_health_check_failed"),
		slog.String("reason", reason),
	)
}

func (ml *MatchLogger) LogMatcherReset(ctx context.Context) {
	ml.logger.InfoContext(ctx, "matcher state reset",
		slog.String("event_type", "matcher_reset"),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func getCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if correlationID, ok := ctx.Value("correlation_id").(string); ok {
		return correlationID
	}

	if requestID, ok := ctx.Value("request_id").(string); ok {
		return requestID
	}

	return ""
}
