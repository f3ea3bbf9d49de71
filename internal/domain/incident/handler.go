package incident

import (
	"errors"
	"net/http"

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
	reporting := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCoordinator, auth.RoleCarer))
	reporting.POST("/incidents", h.Report)
	reporting.GET("/incidents", h.List)
	reporting.GET("/incidents/:id", h.Get)

	working := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCoordinator))
	working.PATCH("/incidents/:id/status", h.UpdateStatus)
}

func (h *Handler) Report(c echo.Context) error {
	var in ReportInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	i, err := h.svc.Report(c.Request().Context(), actor, in)
	if err != nil {
		return incidentError(err)
	}
	return c.JSON(http.StatusCreated, i)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	i, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return incidentError(err)
	}
	return c.JSON(http.StatusOK, i)
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
	f.Status = c.QueryParam("status")
	f.Severity = c.QueryParam("severity")

	items, total, err := h.svc.List(c.Request().Context(), actor, f, pg.Limit, pg.Offset)
	if err != nil {
		return incidentError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Status      string  `json:"status"`
		ActionTaken *string `json:"action_taken,omitempty"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	i, err := h.svc.UpdateStatus(c.Request().Context(), actor, id, body.Status, body.ActionTaken)
	if err != nil {
		return incidentError(err)
	}
	return c.JSON(http.StatusOK, i)
}

func incidentError(err error) error {
	var invalid *InvalidInputError
	if errors.As(err, &invalid) {
		return echo.NewHTTPError(http.StatusBadRequest, invalid.Msg)
	}
	var transition *TransitionError
	if errors.As(err, &transition) {
		return echo.NewHTTPError(http.StatusConflict, transition.Error())
	}
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "incident not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
