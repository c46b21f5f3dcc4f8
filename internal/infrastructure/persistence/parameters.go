package persistence

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Named parameter helpers for raw SQL passed to gorm's Raw and Exec.
// A nil value is sent as NULL.

func nullable[T any](value *T) any {
	if value == nil {
		return nil
	}
	return *value
}

func StringParameter(name string, value *string) sql.NamedArg {
	return sql.Named(name, nullable(value))
}

func Int32Parameter(name string, value *int32) sql.NamedArg {
	return sql.Named(name, nullable(value))
}

func BoolParameter(name string, value *bool) sql.NamedArg {
	return sql.Named(name, nullable(value))
}

func DecimalParameter(name string, value *decimal.Decimal) sql.NamedArg {
	return sql.Named(name, nullable(value))
}

func GUIDParameter(name string, value *uuid.UUID) sql.NamedArg {
	return sql.Named(name, nullable(value))
}

// DateTimeParameter sends the value in UTC
func DateTimeParameter(name string, value *time.Time) sql.NamedArg {
	if value == nil {
		return sql.Named(name, nil)
	}
	return sql.Named(name, value.UTC())
}
