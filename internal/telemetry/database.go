package telemetry

import (
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/0xAcousticbridge/GAID/internal/metrics"
)

const (
	dbSystemKey    = "db.system"
	dbTableKey     = "db.table"
	dbOperationKey = "db.operation"
	dbStatementKey = "db.statement"

	maxStatementLength = 500
	queryStateKey      = "telemetry:query"
)

// queryState travels on the statement between the before and after callbacks
type queryState struct {
	span      trace.Span
	start     time.Time
	operation string
}

type gormPlugin struct {
	tracer trace.Tracer
}

// GORMTracingPlugin returns a plugin that opens a span per statement and
// records it in the database query metrics. Lookups that find no row are
// not marked as errors.
func GORMTracingPlugin() gorm.Plugin {
	return &gormPlugin{tracer: otel.Tracer("gorm")}
}

func (p *gormPlugin) Name() string {
	return "telemetry:tracing"
}

func (p *gormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	err := errors.Join(
		cb.Query().Before("gorm:query").Register("telemetry:before_select", p.before("select")),
		cb.Query().After("gorm:query").Register("telemetry:after_select", p.after),
		cb.Create().Before("gorm:create").Register("telemetry:before_insert", p.before("insert")),
		cb.Create().After("gorm:create").Register("telemetry:after_insert", p.after),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", p.before("update")),
		cb.Update().After("gorm:update").Register("telemetry:after_update", p.after),
		cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", p.before("delete")),
		cb.Delete().After("gorm:delete").Register("telemetry:after_delete", p.after),
		cb.Row().Before("gorm:row").Register("telemetry:before_row", p.before("row")),
		cb.Row().After("gorm:row").Register("telemetry:after_row", p.after),
	)
	if err != nil {
		return fmt.Errorf("register tracing callbacks: %w", err)
	}
	return nil
}

func dbSystem(db *gorm.DB) string {
	if db.Dialector == nil {
		return "unknown"
	}
	if name := db.Dialector.Name(); name != "postgres" {
		return name
	}
	return "postgresql"
}

func tableOf(db *gorm.DB) string {
	if db.Statement.Table != "" {
		return db.Statement.Table
	}
	return "unknown"
}

func (p *gormPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		_, span := p.tracer.Start(ctx, "db."+operation,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String(dbSystemKey, dbSystem(db)),
				attribute.String(dbTableKey, tableOf(db)),
				attribute.String(dbOperationKey, operation),
			),
		)
		db.InstanceSet(queryStateKey, &queryState{span: span, start: time.Now(), operation: operation})
	}
}

func (p *gormPlugin) after(db *gorm.DB) {
	raw, ok := db.InstanceGet(queryStateKey)
	if !ok {
		return
	}
	state, ok := raw.(*queryState)
	if !ok {
		return
	}
	defer state.span.End()

	err := db.Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil
	}
	metrics.ObserveQuery(state.operation, tableOf(db), state.start, err)

	attrs := []attribute.KeyValue{attribute.Int64("db.rows_affected", db.RowsAffected)}
	if sql := db.Statement.SQL.String(); sql != "" {
		if len(sql) > maxStatementLength {
			sql = sql[:maxStatementLength] + "..."
		}
		attrs = append(attrs, attribute.String(dbStatementKey, sql))
	}
	state.span.SetAttributes(attrs...)

	if err != nil {
		state.span.RecordError(err)
		state.span.SetStatus(codes.Error, err.Error())
	}
}
