package catalog

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/agendo/agendo/internal/platform/apperr"
	"github.com/agendo/agendo/internal/platform/auth"
	"github.com/agendo/agendo/pkg/pagination"
)

type Handler struct {
	svc *Catalog
}

func NewHandler(svc *Catalog) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/services")
	g.GET("", h.ListServices)
	g.GET("/:id", h.GetService)
	writes := auth.RequireRole(auth.RoleReceptionist, auth.RoleReceptionistSpecialist)
	g.POST("", h.CreateService, writes)
	g.PUT("/:id", h.UpdateService, writes)

	o := api.Group("/specialists/:specialistId/overrides", writes)
	o.GET("", h.ListOverrides)
	o.PUT("", h.SetOverride)
	o.DELETE("/:serviceId", h.DeactivateOverride)
}

func (h *Handler) CreateService(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	var s Service
	if err := c.Bind(&s); err != nil {
		return apperr.Validation("invalid request body")
	}
	s.BusinessID = actor.BusinessID
	if err := h.svc.CreateService(c.Request().Context(), &s); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) GetService(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	s, err := h.svc.GetService(c.Request().Context(), actor.BusinessID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) ListServices(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	pg := pagination.FromContext(c)
	activeOnly := c.QueryParam("active") == "true"
	items, total, err := h.svc.ListServices(c.Request().Context(), actor.BusinessID, activeOnly, pg.Limit, pg.Offset())
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateService(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	existing, err := h.svc.GetService(c.Request().Context(), actor.BusinessID, id)
	if err != nil {
		return err
	}
	var s Service
	if err := c.Bind(&s); err != nil {
		return apperr.Validation("invalid request body")
	}
	s.ID = existing.ID
	s.BusinessID = existing.BusinessID
	if err := h.svc.UpdateService(c.Request().Context(), &s); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) SetOverride(c echo.Context) error {
	specialistID, err := uuid.Parse(c.Param("specialistId"))
	if err != nil {
		return apperr.Validation("invalid specialist id")
	}
	var o Override
	if err := c.Bind(&o); err != nil {
		return apperr.Validation("invalid request body")
	}
	o.SpecialistID = specialistID
	if err := h.svc.SetOverride(c.Request().Context(), &o); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) ListOverrides(c echo.Context) error {
	specialistID, err := uuid.Parse(c.Param("specialistId"))
	if err != nil {
		return apperr.Validation("invalid specialist id")
	}
	items, err := h.svc.ListOverrides(c.Request().Context(), specialistID)
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeactivateOverride(c echo.Context) error {
	specialistID, err := uuid.Parse(c.Param("specialistId"))
	if err != nil {
		return apperr.Validation("invalid specialist id")
	}
	serviceID, err := uuid.Parse(c.Param("serviceId"))
	if err != nil {
		return apperr.Validation("invalid service id")
	}
	if err := h.svc.DeactivateOverride(c.Request().Context(), specialistID, serviceID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
