package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFromDBDuplicate(t *testing.T) {
	err := FromDB(gorm.ErrDuplicatedKey, "username")
	var cv *ConstraintViolation
	assert.True(t, errors.As(err, &cv))
	assert.Equal(t, "unique", cv.Constraint)
	assert.Equal(t, "username", cv.Field)
}

func TestFromDBForeignKey(t *testing.T) {
	err := FromDB(gorm.ErrForeignKeyViolated, "group_id")
	var cv *ConstraintViolation
	assert.True(t, errors.As(err, &cv))
	assert.Equal(t, "foreign_key", cv.Constraint)
}

func TestFromDBWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("insert user: %w", gorm.ErrDuplicatedKey)
	assert.True(t, IsConstraint(FromDB(wrapped, "username")))
}

func TestFromDBPassesThroughUnknown(t *testing.T) {
	sentinel := errors.New("boom")
	assert.Equal(t, sentinel, FromDB(sentinel, "f"))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsValidation(NewValidation("f", "required")))
	assert.True(t, IsNotFound(&NotFound{Entity: "user", ID: 1}))
	assert.False(t, IsValidation(errors.New("x")))
	assert.False(t, IsConstraint(nil))
}

func TestValidationFieldsInMessage(t *testing.T) {
	err := NewValidation("label", "required")
	assert.Contains(t, err.Error(), "label")
}
