package template

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
	authoring := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCoordinator))
	authoring.POST("/templates", h.CreateDraft)
	authoring.GET("/templates", h.ListTemplates)
	authoring.PUT("/templates/:id", h.UpdateTemplate)
	authoring.POST("/templates/:id/publish", h.PublishTemplate)
	authoring.POST("/templates/:id/revise", h.ReviseTemplate)
	authoring.POST("/templates/:id/archive", h.ArchiveTemplate)
	authoring.PATCH("/templates/:id/enabled", h.SetEnabled)

	// Carers need the picker and the individual template to start a note.
	reading := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCoordinator, auth.RoleCarer, auth.RoleQA))
	reading.GET("/templates/enabled", h.ListEnabled)
	reading.GET("/templates/:id", h.GetTemplate)
}

func (h *Handler) CreateDraft(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	t, err := h.svc.CreateDraft(c.Request().Context(), actor, in)
	if err != nil {
		return templateError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	t, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return templateError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListTemplates(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())
	items, total, err := h.svc.List(c.Request().Context(), actor, c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListEnabled(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	items, err := h.svc.ListEnabled(c.Request().Context(), actor)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	t, err := h.svc.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return templateError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) PublishTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	t, err := h.svc.Publish(c.Request().Context(), actor, id)
	if err != nil {
		return templateError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ReviseTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	t, err := h.svc.Revise(c.Request().Context(), actor, id)
	if err != nil {
		return templateError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ArchiveTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	t, err := h.svc.Archive(c.Request().Context(), actor, id)
	if err != nil {
		return templateError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) SetEnabled(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		IsEnabled bool `json:"is_enabled"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	t, err := h.svc.SetEnabled(c.Request().Context(), actor, id, body.IsEnabled)
	if err != nil {
		return templateError(err)
	}
	return c.JSON(http.StatusOK, t)
}

// templateError maps domain errors to HTTP failures. State and structural
// conflicts are 409: the same caller cannot succeed without changing the
// request.
func templateError(err error) error {
	var invalid *InvalidInputError
	if errors.As(err, &invalid) {
		return echo.NewHTTPError(http.StatusBadRequest, invalid.Msg)
	}
	var conflict *EditConflictError
	if errors.As(err, &conflict) {
		return echo.NewHTTPError(http.StatusConflict, conflict.Reason)
	}
	var rejected *PublishRejectedError
	if errors.As(err, &rejected) {
		return echo.NewHTTPError(http.StatusConflict, map[string]any{
			"message": "publish rejected",
			"reasons": rejected.Reasons,
		})
	}
	if errors.Is(err, ErrStaleVersion) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "template not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
