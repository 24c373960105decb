package service

import (
	"database/sql"
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/vova4o/goschool-api/pkg/database"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// NewValidator returns a validator with the project's custom tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

func validationError(err error, message string) error {
	return appErrors.WrapAs(appErrors.ErrValidation, err, message)
}

// storeError classifies a repository failure. Not-found and unique violations
// are handled by callers before reaching here.
func storeError(err error, message string) error {
	if database.IsUnavailable(err) {
		return appErrors.WrapAs(appErrors.ErrStoreUnavailable, err, message)
	}
	return appErrors.WrapAs(appErrors.ErrInternal, err, message)
}

// mutationError maps errors of writes that carry a natural key.
func mutationError(err error, notFound, conflict, message string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	case database.IsUniqueViolation(err):
		return appErrors.WrapAs(appErrors.ErrConflict, err, conflict)
	default:
		return storeError(err, message)
	}
}
