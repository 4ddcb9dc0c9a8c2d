package staff

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
	g := api.Group("/staff", auth.RequireRole(auth.RoleReceptionist, auth.RoleReceptionistSpecialist))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.POST("/:id/branches/:branchId", h.GrantBranch)
	g.DELETE("/:id/branches/:branchId", h.RevokeBranch)
}

func (h *Handler) Create(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	var m Member
	if err := c.Bind(&m); err != nil {
		return apperr.Validation("invalid request body")
	}
	m.BusinessID = actor.BusinessID
	if err := h.svc.Create(c.Request().Context(), &m); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) Get(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	m, err := h.svc.GetByID(c.Request().Context(), actor.BusinessID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
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
	var m Member
	if err := c.Bind(&m); err != nil {
		return apperr.Validation("invalid request body")
	}
	m.ID = existing.ID
	m.BusinessID = existing.BusinessID
	if err := h.svc.Update(c.Request().Context(), &m); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) GrantBranch(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	branchID, err := uuid.Parse(c.Param("branchId"))
	if err != nil {
		return apperr.Validation("invalid branch id")
	}
	if err := h.svc.GrantBranchAccess(c.Request().Context(), actor.BusinessID, id, branchID); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"success": true})
}

func (h *Handler) RevokeBranch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	branchID, err := uuid.Parse(c.Param("branchId"))
	if err != nil {
		return apperr.Validation("invalid branch id")
	}
	if err := h.svc.RevokeBranchAccess(c.Request().Context(), id, branchID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
