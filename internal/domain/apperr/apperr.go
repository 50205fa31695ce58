package apperr

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// 统一业务错误分类：ValidationError / ConstraintViolation / NotFound
// DAO 层通过 FromDB 把 gorm 翻译后的驱动错误映射进来（需开启 TranslateError）。

// ValidationError carries per-field messages for missing/invalid input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidation builds a single-field validation error.
func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// ConstraintViolation signals a uniqueness or foreign-key failure.
type ConstraintViolation struct {
	Constraint string // "unique" or "foreign_key"
	Field      string
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation (%s) on %s", e.Constraint, e.Field)
}

// NotFound 查询目标不存在（区别于空列表）
type NotFound struct {
	Entity string
	ID     int64
}

func (e *NotFound) Error() string { return fmt.Sprintf("%s id=%d not found", e.Entity, e.ID) }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConstraint(err error) bool {
	var cv *ConstraintViolation
	return errors.As(err, &cv)
}

func IsNotFound(err error) bool {
	var nf *NotFound
	return errors.As(err, &nf)
}

// FromDB maps storage errors onto the taxonomy. field names the column family
// involved in the write so callers get a meaningful error payload.
func FromDB(err error, field string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConstraintViolation{Constraint: "unique", Field: field}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &ConstraintViolation{Constraint: "foreign_key", Field: field}
	}
	return err
}
