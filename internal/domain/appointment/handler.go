package appointment

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/agendo/agendo/internal/platform/apperr"
	"github.com/agendo/agendo/internal/platform/auth"
	"github.com/agendo/agendo/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/appointments")
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, auth.RequireRole(auth.RoleReceptionist, auth.RoleReceptionistSpecialist))
	g.PATCH("/:id/status", h.Transition)
	g.DELETE("/:id", h.Cancel)
}

type createRequest struct {
	BranchID     *uuid.UUID `json:"branch_id"`
	SpecialistID uuid.UUID  `json:"specialist_id"`
	ClientID     uuid.UUID  `json:"client_id"`
	ServiceID    uuid.UUID  `json:"service_id"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	Notes        *string    `json:"notes"`
}

func (h *Handler) Create(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	a, err := h.svc.Create(c.Request().Context(), actor, CreateInput{
		BranchID:     req.BranchID,
		SpecialistID: req.SpecialistID,
		ClientID:     req.ClientID,
		ServiceID:    req.ServiceID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// parseQueryOptions reads the optional list filters. A single `date` selects
// that whole day; otherwise `from`/`to` bound the range.
func parseQueryOptions(c echo.Context) (QueryOptions, error) {
	var opts QueryOptions

	if v := c.QueryParam("specialist_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return opts, apperr.Validation("invalid specialist_id")
		}
		opts.SpecialistID = &id
	}
	if v := c.QueryParam("branch_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return opts, apperr.Validation("invalid branch_id")
		}
		opts.BranchID = &id
	}
	if v := c.QueryParam("client_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return opts, apperr.Validation("invalid client_id")
		}
		opts.ClientID = &id
	}
	if v := c.QueryParam("status"); v != "" {
		st := Status(v)
		if !st.Valid() {
			return opts, apperr.Validation("invalid status")
		}
		opts.Status = &st
	}

	if v := c.QueryParam("date"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			return opts, apperr.Validation("invalid date, expected YYYY-MM-DD")
		}
		from := day
		to := day.Add(24*time.Hour - time.Nanosecond)
		opts.From, opts.To = &from, &to
		return opts, nil
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return opts, apperr.Validation("invalid from, expected RFC 3339")
		}
		opts.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return opts, apperr.Validation("invalid to, expected RFC 3339")
		}
		opts.To = &t
	}
	return opts, nil
}

func (h *Handler) List(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	opts, err := parseQueryOptions(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), actor, opts, pg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, int(total), pg))
}

type transitionRequest struct {
	Status       Status  `json:"status"`
	Notes        *string `json:"notes"`
	CancelReason *string `json:"cancel_reason"`
}

func (h *Handler) Transition(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	a, err := h.svc.Transition(c.Request().Context(), actor, id, TransitionInput{
		Target:       req.Status,
		Notes:        req.Notes,
		CancelReason: req.CancelReason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

type cancelRequest struct {
	CancelReason *string `json:"cancel_reason"`
	Notes        *string `json:"notes"`
}

func (h *Handler) Cancel(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var req cancelRequest
	if err := c.Bind(&req); err != nil && err != echo.ErrUnsupportedMediaType {
		req.CancelReason, req.Notes = nil, nil
	}

	a, err := h.svc.Cancel(c.Request().Context(), actor, id, req.CancelReason, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Stats(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	days := 30
	if v := c.QueryParam("days"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d <= 0 {
			return apperr.Validation("invalid days")
		}
		days = d
	}
	stats, err := h.svc.Stats(c.Request().Context(), actor.BusinessID, days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
