package branch

import (
	"net/http"

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
	g := api.Group("/branches")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	writes := auth.RequireRole(auth.RoleReceptionist, auth.RoleReceptionistSpecialist)
	g.POST("", h.Create, writes)
	g.PUT("/:id", h.Update, writes)
	g.POST("/:id/main", h.SetMain, writes)
}

func (h *Handler) Create(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	var b Branch
	if err := c.Bind(&b); err != nil {
		return apperr.Validation("invalid request body")
	}
	b.BusinessID = actor.BusinessID
	b.IsMain = false
	if err := h.svc.Create(c.Request().Context(), &b); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) Get(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	b, err := h.svc.GetByID(c.Request().Context(), actor.BusinessID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) List(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByBusiness(c.Request().Context(), actor.BusinessID, pg.Limit, pg.Offset())
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) Update(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	existing, err := h.svc.GetByID(c.Request().Context(), actor.BusinessID, id)
	if err != nil {
		return err
	}
	var b Branch
	if err := c.Bind(&b); err != nil {
		return apperr.Validation("invalid request body")
	}
	b.ID = existing.ID
	b.BusinessID = existing.BusinessID
	b.IsMain = existing.IsMain
	if err := h.svc.Update(c.Request().Context(), &b); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) SetMain(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.SetMain(c.Request().Context(), actor.BusinessID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}
