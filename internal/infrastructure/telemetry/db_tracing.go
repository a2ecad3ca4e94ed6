package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the otelgorm plugin
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bound query variables in db.statement. Development only.
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBName          string
}

// DBTracingPlugin adds a span per GORM statement and flags slow ones
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the plugin; the slow threshold defaults to 200ms
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register installs otelgorm and the timing callbacks on db. It is a no-op
// when database tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled")
		return nil
	}

	var opts []otelgorm.Option
	if p.config.DBName != "" {
		opts = append(opts, otelgorm.WithDBName(p.config.DBName))
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.registerCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

// The after hooks run before otelgorm ends its span.
func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	steps := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("crm_timing:before_create", markQueryStart) },
		func() error { return cb.Query().Before("gorm:query").Register("crm_timing:before_query", markQueryStart) },
		func() error { return cb.Update().Before("gorm:update").Register("crm_timing:before_update", markQueryStart) },
		func() error { return cb.Delete().Before("gorm:delete").Register("crm_timing:before_delete", markQueryStart) },
		func() error { return cb.Row().Before("gorm:row").Register("crm_timing:before_row", markQueryStart) },
		func() error { return cb.Raw().Before("gorm:raw").Register("crm_timing:before_raw", markQueryStart) },

		func() error { return cb.Create().After("gorm:create").Before("otel:after:create").Register("crm_timing:after_create", p.annotateSpan) },
		func() error { return cb.Query().After("gorm:query").Before("otel:after:query").Register("crm_timing:after_query", p.annotateSpan) },
		func() error { return cb.Update().After("gorm:update").Before("otel:after:update").Register("crm_timing:after_update", p.annotateSpan) },
		func() error { return cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("crm_timing:after_delete", p.annotateSpan) },
		func() error { return cb.Row().After("gorm:row").Before("otel:after:row").Register("crm_timing:after_row", p.annotateSpan) },
		func() error { return cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("crm_timing:after_raw", p.annotateSpan) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

type queryStartKey struct{}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

// annotateSpan adds table and row attributes to the active span and marks
// statements slower than the threshold.
func (p *DBTracingPlugin) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		RecordError(span, db.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}
