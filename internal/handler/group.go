package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/service"
)

// GroupHandler exposes desk-mate groups.
type GroupHandler struct {
	groups *service.GroupService
	log    *zap.Logger
}

func NewGroupHandler(groups *service.GroupService, log *zap.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, log: log}
}

// groupReq lets the service enforce size and uniqueness so every caller
// gets the same messages.
type groupReq struct {
	Name       string   `json:"name" validate:"max=100"`
	StudentIDs []string `json:"student_ids" validate:"required"`
	LayoutID   string   `json:"layout_id"`
}

func (r groupReq) input() service.GroupInput {
	return service.GroupInput{Name: r.Name, StudentIDs: r.StudentIDs, LayoutID: r.LayoutID}
}

func (h *GroupHandler) Create(c echo.Context) error {
	var req groupReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	g, err := h.groups.Create(c.Request().Context(), req.input())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, g)
}

// List supports ?layout_id= to show only groups usable with one grid.
func (h *GroupHandler) List(c echo.Context) error {
	gs, err := h.groups.List(c.Request().Context(), c.QueryParam("layout_id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, gs)
}

func (h *GroupHandler) Get(c echo.Context) error {
	g, err := h.groups.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *GroupHandler) Update(c echo.Context) error {
	var req groupReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	g, err := h.groups.Update(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *GroupHandler) Delete(c echo.Context) error {
	if err := h.groups.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type recommendReq struct {
	Count  int    `json:"count" validate:"required,min=1,max=50"`
	Flavor string `json:"flavor" validate:"omitempty,oneof=none mixed_gender same_gender custom"`
}

// Recommend proposes groups without storing them.
func (h *GroupHandler) Recommend(c echo.Context) error {
	var req recommendReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	flavor := model.GroupFlavor(req.Flavor)
	if flavor == "" {
		flavor = model.FlavorNone
	}
	rec, err := h.groups.Recommend(c.Request().Context(), req.Count, flavor)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rec)
}
