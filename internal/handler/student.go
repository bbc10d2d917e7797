package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/service"
)

// StudentHandler exposes the roster.
type StudentHandler struct {
	students *service.StudentService
	log      *zap.Logger
}

func NewStudentHandler(students *service.StudentService, log *zap.Logger) *StudentHandler {
	return &StudentHandler{students: students, log: log}
}

// studentReq leaves length and gender checks to the service so the
// messages match the import path.
type studentReq struct {
	Name            string `json:"name" validate:"required"`
	Gender          string `json:"gender" validate:"required"`
	ClassName       string `json:"class_name"`
	SpecialNeeds    bool   `json:"special_needs"`
	PreferredSeatID string `json:"preferred_seat_id"`
	Notes           string `json:"notes"`
}

func (r studentReq) input() service.StudentInput {
	return service.StudentInput{
		Name:            r.Name,
		Gender:          r.Gender,
		ClassName:       r.ClassName,
		SpecialNeeds:    r.SpecialNeeds,
		PreferredSeatID: r.PreferredSeatID,
		Notes:           r.Notes,
	}
}

func (h *StudentHandler) Create(c echo.Context) error {
	var req studentReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	st, err := h.students.Create(c.Request().Context(), req.input())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, st)
}

type importReq struct {
	Students []studentReq `json:"students" validate:"required,min=1,dive"`
}

// Import creates a batch of students and reports the skipped rows.
func (h *StudentHandler) Import(c echo.Context) error {
	var req importReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	rows := make([]service.StudentInput, len(req.Students))
	for i, r := range req.Students {
		rows[i] = r.input()
	}
	created, skipped, err := h.students.Import(c.Request().Context(), rows)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"created": created, "skipped": skipped})
}

// List supports ?gender=, ?class_name=, ?special_needs= and ?q=.
func (h *StudentHandler) List(c echo.Context) error {
	f := service.StudentFilter{ClassName: c.QueryParam("class_name"), Query: c.QueryParam("q")}
	if g := c.QueryParam("gender"); g != "" {
		gender, ok := service.NormalizeGender(g)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid gender filter"})
		}
		f.Gender = gender
	}
	if v := c.QueryParam("special_needs"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "special_needs must be true or false"})
		}
		f.SpecialNeeds = &b
	}
	sts, err := h.students.List(c.Request().Context(), f)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, sts)
}

func (h *StudentHandler) Get(c echo.Context) error {
	st, err := h.students.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *StudentHandler) Update(c echo.Context) error {
	var req studentReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	st, err := h.students.Update(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *StudentHandler) Delete(c echo.Context) error {
	if err := h.students.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *StudentHandler) Stats(c echo.Context) error {
	stats, err := h.students.Stats(c.Request().Context())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, stats)
}
