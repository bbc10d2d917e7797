package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/reveal"
	"github.com/iliyamo/classroom-seating/internal/service"
)

// RevealHandler builds reveal sequences and drives playback.
type RevealHandler struct {
	reveals *service.RevealService
	log     *zap.Logger
}

func NewRevealHandler(reveals *service.RevealService, log *zap.Logger) *RevealHandler {
	return &RevealHandler{reveals: reveals, log: log}
}

// timingReq overrides the configured reveal timing.  Zero values keep
// the defaults.
type timingReq struct {
	Mode            string  `json:"mode" validate:"omitempty,oneof=lottery direct"`
	SpeedMS         int     `json:"speed_ms" validate:"min=0"`
	ShuffleCount    int     `json:"shuffle_count" validate:"min=0,max=50"`
	PauseMS         int     `json:"pause_between_seats_ms" validate:"min=0"`
	SpeedMultiplier float64 `json:"speed_multiplier" validate:"min=0"`
}

func (r timingReq) config() reveal.Config {
	return reveal.Config{
		Speed:             time.Duration(r.SpeedMS) * time.Millisecond,
		ShuffleCount:      r.ShuffleCount,
		PauseBetweenSeats: time.Duration(r.PauseMS) * time.Millisecond,
		SpeedMultiplier:   r.SpeedMultiplier,
	}
}

// Sequence returns the frames for a stored record without playing them.
func (h *RevealHandler) Sequence(c echo.Context) error {
	var req timingReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	seq, err := h.reveals.Sequence(c.Request().Context(), c.Param("id"), reveal.Mode(req.Mode), req.config())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, seq)
}

type startReq struct {
	timingReq
	RecordID string `json:"record_id"`
}

// Start plays the current (or given) record of a grid.
func (h *RevealHandler) Start(c echo.Context) error {
	var req startReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	pb, err := h.reveals.Start(c.Request().Context(), c.Param("id"), service.RevealRequest{
		RecordID: req.RecordID,
		Mode:     reveal.Mode(req.Mode),
		Config:   req.config(),
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusAccepted, pb)
}

func (h *RevealHandler) respond(c echo.Context, pb *service.Playback, err error) error {
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, pb)
}

func (h *RevealHandler) State(c echo.Context) error {
	pb, err := h.reveals.State(c.Param("id"))
	return h.respond(c, pb, err)
}

func (h *RevealHandler) Pause(c echo.Context) error {
	pb, err := h.reveals.Pause(c.Param("id"))
	return h.respond(c, pb, err)
}

func (h *RevealHandler) Resume(c echo.Context) error {
	pb, err := h.reveals.Resume(c.Param("id"))
	return h.respond(c, pb, err)
}

func (h *RevealHandler) Stop(c echo.Context) error {
	pb, err := h.reveals.Stop(c.Param("id"))
	return h.respond(c, pb, err)
}

type jumpReq struct {
	Index *int `json:"index" validate:"required,min=0"`
}

func (h *RevealHandler) Jump(c echo.Context) error {
	var req jumpReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, h.log, err)
	}
	pb, err := h.reveals.Jump(c.Param("id"), *req.Index)
	return h.respond(c, pb, err)
}
