package narrowphase

import (
	"context"
	"log/slog"

	"github.com/akmonengine/narrowphase/actor"
	"golang.org/x/time/rate"
)

// diagnostics logs solver and dispatch anomalies. Queries can run millions of
// times per second, so warnings go through a token bucket; debug records are
// only built when the level is enabled.
type diagnostics struct {
	logger  *slog.Logger
	limiter *rate.Limiter
}

func newDiagnostics(logger *slog.Logger, cfg LogConfig) *diagnostics {
	if logger == nil {
		logger = slog.Default()
	}
	d := &diagnostics{logger: logger}
	if cfg.WarningsPerSecond > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(cfg.WarningsPerSecond), cfg.Burst)
	}
	return d
}

func (d *diagnostics) warn(msg, op string, a, b actor.ShapeType, attrs ...slog.Attr) {
	if d.limiter != nil && !d.limiter.Allow() {
		return
	}
	d.log(slog.LevelWarn, msg, op, a, b, attrs...)
}

func (d *diagnostics) debug(msg, op string, a, b actor.ShapeType, attrs ...slog.Attr) {
	d.log(slog.LevelDebug, msg, op, a, b, attrs...)
}

func (d *diagnostics) log(level slog.Level, msg, op string, a, b actor.ShapeType, attrs ...slog.Attr) {
	ctx := context.Background()
	if !d.logger.Enabled(ctx, level) {
		return
	}
	attrs = append([]slog.Attr{
		slog.String("op", op),
		slog.String("kindA", a.String()),
		slog.String("kindB", b.String()),
	}, attrs...)
	d.logger.LogAttrs(ctx, level, msg, attrs...)
}
