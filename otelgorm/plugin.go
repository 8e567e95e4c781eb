// Package otelgorm instruments gorm with OpenTelemetry spans, one per
// executed statement.
package otelgorm

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const tracerName = "github.com/performancemedia/sqlargon/otelgorm"

// Plugin is a gorm plugin opening a client span around every operation.
type Plugin struct {
	tracer trace.Tracer
}

// Option configures the plugin.
type Option func(*Plugin)

// WithTracerProvider sets the provider used to create the tracer.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Plugin) {
		p.tracer = tp.Tracer(tracerName)
	}
}

// New creates the plugin. Without options the global tracer provider is used.
func New(opts ...Option) *Plugin {
	p := &Plugin{}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracer == nil {
		p.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	return p
}

// Name implements gorm.Plugin.
func (p *Plugin) Name() string { return "otelgorm" }

// Initialize registers span callbacks around every gorm operation.
func (p *Plugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otelgorm:before_create", p.before("create")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otelgorm:after_create", p.after); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("otelgorm:before_query", p.before("query")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otelgorm:after_query", p.after); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("otelgorm:before_update", p.before("update")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otelgorm:after_update", p.after); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("otelgorm:before_delete", p.before("delete")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otelgorm:after_delete", p.after); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("otelgorm:before_row", p.before("row")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otelgorm:after_row", p.after); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("otelgorm:before_raw", p.before("raw")); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("otelgorm:after_raw", p.after)
}

func (p *Plugin) before(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		ctx, _ := p.tracer.Start(tx.Statement.Context, "sqlargon."+op,
			trace.WithSpanKind(trace.SpanKindClient))
		tx.Statement.Context = ctx
	}
}

func (p *Plugin) after(tx *gorm.DB) {
	span := trace.SpanFromContext(tx.Statement.Context)
	if !span.IsRecording() {
		return
	}
	defer span.End()

	span.SetAttributes(
		attribute.String("db.sql.table", tx.Statement.Table),
		attribute.Int64("db.rows_affected", tx.Statement.RowsAffected),
	)
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
		span.SetStatus(codes.Error, tx.Error.Error())
	}
}
