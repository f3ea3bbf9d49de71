package shift

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/carebridge/internal/platform/auth"
	"github.com/carebridge/carebridge/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	scheduling := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCoordinator))
	scheduling.POST("/shifts", h.Schedule)
	scheduling.POST("/shifts/:id/missed", h.MarkMissed)

	carers := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCoordinator, auth.RoleCarer))
	carers.GET("/shifts", h.List)
	carers.GET("/shifts/:id", h.Get)
	carers.POST("/shifts/:id/check-in", h.CheckIn)
	carers.POST("/shifts/:id/check-out", h.CheckOut)
}

func (h *Handler) Schedule(c echo.Context) error {
	var in ScheduleInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	sh, err := h.svc.Schedule(c.Request().Context(), actor, in)
	if err != nil {
		return shiftError(err)
	}
	return c.JSON(http.StatusCreated, sh)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	sh, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return shiftError(err)
	}
	return c.JSON(http.StatusOK, sh)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())

	var f ListFilter
	if s := c.QueryParam("client_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid client_id")
		}
		f.ClientID = &id
	}
	if s := c.QueryParam("day"); s != "" {
		day, err := time.Parse("2006-01-02", s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid day, want YYYY-MM-DD")
		}
		f.Day = &day
	}
	f.Status = c.QueryParam("status")

	items, total, err := h.svc.List(c.Request().Context(), actor, f, pg.Limit, pg.Offset)
	if err != nil {
		return shiftError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CheckIn(c echo.Context) error {
	return h.transition(c, h.svc.CheckIn)
}

func (h *Handler) CheckOut(c echo.Context) error {
	return h.transition(c, h.svc.CheckOut)
}

func (h *Handler) transition(c echo.Context, op func(ctx context.Context, actor auth.Actor, id uuid.UUID, loc Location) (*Shift, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var loc Location
	if err := c.Bind(&loc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	sh, err := op(c.Request().Context(), actor, id, loc)
	if err != nil {
		return shiftError(err)
	}
	return c.JSON(http.StatusOK, sh)
}

func (h *Handler) MarkMissed(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	sh, err := h.svc.MarkMissed(c.Request().Context(), actor, id)
	if err != nil {
		return shiftError(err)
	}
	return c.JSON(http.StatusOK, sh)
}

func shiftError(err error) error {
	var invalid *InvalidInputError
	if errors.As(err, &invalid) {
		return echo.NewHTTPError(http.StatusBadRequest, invalid.Msg)
	}
	var state *StateError
	if errors.As(err, &state) {
		return echo.NewHTTPError(http.StatusConflict, state.Reason)
	}
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "shift not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
