package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/service"
)

// GridHandler exposes classroom layouts.
type GridHandler struct {
	grids *service.GridService
	log   *zap.Logger
}

func NewGridHandler(grids *service.GridService, log *zap.Logger) *GridHandler {
	return &GridHandler{grids: grids, log: log}
}

type gridReq struct {
	Name          string `json:"name" validate:"required,max=100"`
	Rows          int    `json:"rows" validate:"required,min=1"`
	Cols          int    `json:"cols" validate:"required,min=1"`
	NumberingMode string `json:"numbering_mode" validate:"omitempty,oneof=sequential coordinate"`
	IsDefault     bool   `json:"is_default"`
}

func (r gridReq) input() service.GridInput {
	return service.GridInput{
		Name:          r.Name,
		Rows:          r.Rows,
		Cols:          r.Cols,
		NumberingMode: model.NumberingMode(r.NumberingMode),
		IsDefault:     r.IsDefault,
	}
}

func (h *GridHandler) Create(c echo.Context) error {
	var req gridReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	g, err := h.grids.Create(c.Request().Context(), req.input())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *GridHandler) List(c echo.Context) error {
	gs, err := h.grids.List(c.Request().Context())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, gs)
}

func (h *GridHandler) Get(c echo.Context) error {
	g, err := h.grids.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, g)
}

// Default returns the grid marked as default.
func (h *GridHandler) Default(c echo.Context) error {
	g, err := h.grids.Default(c.Request().Context())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *GridHandler) Update(c echo.Context) error {
	var req gridReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	g, err := h.grids.Update(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *GridHandler) Delete(c echo.Context) error {
	if err := h.grids.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *GridHandler) SetDefault(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.grids.SetDefault(ctx, c.Param("id")); err != nil {
		return fail(c, h.log, err)
	}
	g, err := h.grids.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, g)
}

type cloneReq struct {
	Name string `json:"name" validate:"max=100"`
}

func (h *GridHandler) Clone(c echo.Context) error {
	var req cloneReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	g, err := h.grids.Clone(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, g)
}

type seatKindReq struct {
	Kind string `json:"kind" validate:"required,oneof=normal special"`
}

// SetSeatKind toggles one seat between normal and special.
func (h *GridHandler) SetSeatKind(c echo.Context) error {
	var req seatKindReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	g, err := h.grids.SetSeatKind(c.Request().Context(), c.Param("id"), c.Param("seat_id"), model.SeatKind(req.Kind))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, g)
}

// Layout returns the seats grouped by row.
func (h *GridHandler) Layout(c echo.Context) error {
	l, err := h.grids.Layout(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, l)
}
