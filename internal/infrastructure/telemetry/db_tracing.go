package telemetry

import (
	"errors"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// GormTracing adds a span to every gorm statement
type GormTracing struct {
	// DBSystem is the provider name recorded as db.system
	DBSystem string
	// LogSQL keeps bound variables in db.statement. Leave off in production.
	LogSQL bool
	// Provider overrides the global tracer provider
	Provider trace.TracerProvider
}

// Register installs the otelgorm plugin and a callback that annotates the
// statement span with the table and affected rows
func (g GormTracing) Register(db *gorm.DB) error {
	opts := []otelgorm.Option{otelgorm.WithDBName(g.DBSystem)}
	if !g.LogSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if g.Provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(g.Provider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	for name, register := range map[string]func(string, func(*gorm.DB)) error{
		"create": cb.Create().After("gorm:create").Register,
		"query":  cb.Query().After("gorm:query").Register,
		"update": cb.Update().After("gorm:update").Register,
		"delete": cb.Delete().After("gorm:delete").Register,
	} {
		if err := register("storefront:span_"+name, annotateSpan); err != nil {
			return err
		}
	}
	return nil
}

func annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
	}
}
