package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/repository"
	"github.com/iliyamo/classroom-seating/internal/reveal"
	"github.com/iliyamo/classroom-seating/internal/service"
)

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator { return &Validator{v: validator.New()} }

func (cv *Validator) Validate(i interface{}) error { return cv.v.Struct(i) }

// bindValid binds the request body into dst and validates it.  Problems
// come back as a *service.ValidationError so fail answers them with 400.
func bindValid(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return &service.ValidationError{Errors: []string{"invalid body"}}
	}
	if err := c.Validate(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &service.ValidationError{Errors: []string{err.Error()}}
		}
		details := make([]string, len(verrs))
		for i, fe := range verrs {
			details[i] = fe.Field() + " failed " + fe.Tag()
		}
		return &service.ValidationError{Errors: details}
	}
	return nil
}

// fail maps service errors to status codes.  Unexpected errors are
// logged and hidden behind a generic message.
func fail(c echo.Context, log *zap.Logger, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "details": verr.Errors})
	case errors.Is(err, reveal.ErrFrameOutOfRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrLayoutNotFound),
		errors.Is(err, service.ErrSeatNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrRecordNotFound),
		errors.Is(err, service.ErrNoPlayback):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrStudentInGroup),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, reveal.ErrNotPlaying):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	log.Error("request failed", zap.String("route", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
