package visitnote

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/carebridge/internal/domain/formrender"
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
	carers := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCoordinator, auth.RoleCarer, auth.RoleQA))
	carers.POST("/visit-notes", h.Submit)
	carers.GET("/visit-notes", h.List)
	carers.GET("/visit-notes/:id", h.Get)
	carers.GET("/visit-notes/:id/rendered", h.Rendered)

	reviewers := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleCoordinator, auth.RoleQA))
	reviewers.GET("/visit-notes/queue/pending", h.PendingQueue)
	reviewers.POST("/visit-notes/:id/review", h.Review)
}

func (h *Handler) Submit(c echo.Context) error {
	var in SubmitInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	n, err := h.svc.Submit(c.Request().Context(), actor, in)
	if err != nil {
		return noteError(err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	n, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return noteError(err)
	}
	return c.JSON(http.StatusOK, n)
}

// Rendered returns the note as a render-node tree built from its frozen
// snapshot, so historical notes display exactly as their form looked at
// submission time.
func (h *Handler) Rendered(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.ActorFromContext(c.Request().Context())
	n, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return noteError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"template_name": n.Snapshot.TemplateName,
		"version":       n.Snapshot.Version,
		"qa_status":     n.QAStatus,
		"sections":      formrender.Render(n.Snapshot.Sections, n.Data, nil, formrender.ModeView),
	})
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
	if s := c.QueryParam("shift_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid shift_id")
		}
		f.ShiftID = &id
	}
	f.QAStatus = c.QueryParam("qa_status")

	items, total, err := h.svc.List(c.Request().Context(), actor, f, pg.Limit, pg.Offset)
	if err != nil {
		return noteError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) PendingQueue(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.ActorFromContext(c.Request().Context())
	items, total, err := h.svc.ListPendingQA(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return noteError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Review(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Approve bool    `json:"approve"`
		Comment *string `json:"comment,omitempty"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	n, err := h.svc.Review(c.Request().Context(), actor, id, body.Approve, body.Comment)
	if err != nil {
		return noteError(err)
	}
	return c.JSON(http.StatusOK, n)
}

func noteError(err error) error {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]any{
			"message": "validation failed",
			"errors":  validation.Errors,
		})
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "visit note not found")
	case errors.Is(err, ErrTemplateNotEnabled):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrAlreadyReviewed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
