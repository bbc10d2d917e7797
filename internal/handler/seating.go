package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/service"
)

// SeatingHandler runs fills and serves the seating history.
type SeatingHandler struct {
	fills *service.FillService
	log   *zap.Logger
}

func NewSeatingHandler(fills *service.FillService, log *zap.Logger) *SeatingHandler {
	return &SeatingHandler{fills: fills, log: log}
}

type assignmentReq struct {
	SeatID    string `json:"seat_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
}

type fillReq struct {
	Strategy   string          `json:"strategy" validate:"omitempty,oneof=random manual mixed"`
	Policy     string          `json:"constraint_policy" validate:"omitempty,oneof=none mixed_gender same_gender"`
	Fixed      []assignmentReq `json:"assignments" validate:"dive"`
	UseGroups  bool            `json:"use_groups"`
	GroupIDs   []string        `json:"group_ids"`
	StudentIDs []string        `json:"student_ids"`
}

// Fill seats the roster on a grid and stores the result.
func (h *SeatingHandler) Fill(c echo.Context) error {
	var req fillReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	fixed := make([]model.SeatAssignment, len(req.Fixed))
	for i, a := range req.Fixed {
		fixed[i] = model.SeatAssignment{SeatID: a.SeatID, StudentID: a.StudentID}
	}
	rep, err := h.fills.Fill(c.Request().Context(), c.Param("id"), service.FillRequest{
		Strategy:   model.FillStrategy(req.Strategy),
		Policy:     model.ConstraintPolicy(req.Policy),
		Fixed:      fixed,
		UseGroups:  req.UseGroups,
		GroupIDs:   req.GroupIDs,
		StudentIDs: req.StudentIDs,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, rep)
}

// History lists the records of a grid, newest first.
func (h *SeatingHandler) History(c echo.Context) error {
	recs, err := h.fills.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, recs)
}

// Latest returns the current seating of a grid.
func (h *SeatingHandler) Latest(c echo.Context) error {
	rec, err := h.fills.Latest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *SeatingHandler) Record(c echo.Context) error {
	rec, err := h.fills.Record(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rec)
}

type checkReq struct {
	Policy string `json:"constraint_policy" validate:"omitempty,oneof=none mixed_gender same_gender"`
}

// Check validates the current seating against a policy.
func (h *SeatingHandler) Check(c echo.Context) error {
	var req checkReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	res, err := h.fills.Check(c.Request().Context(), c.Param("id"), model.ConstraintPolicy(req.Policy))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Policy recommends a gender policy for the roster on a grid.
func (h *SeatingHandler) Policy(c echo.Context) error {
	adv, err := h.fills.Policy(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, adv)
}
