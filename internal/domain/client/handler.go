package client

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
	g := api.Group("/clients")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, auth.RequireRole(auth.RoleReceptionist, auth.RoleReceptionistSpecialist))
	g.PUT("/:id", h.Update, auth.RequireRole(auth.RoleReceptionist, auth.RoleReceptionistSpecialist))
}

func (h *Handler) Create(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	var cl Client
	if err := c.Bind(&cl); err != nil {
		return apperr.Validation("invalid request body")
	}
	cl.BusinessID = actor.BusinessID
	if err := h.svc.Create(c.Request().Context(), &cl); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) Get(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	cl, err := h.svc.GetByID(c.Request().Context(), actor.BusinessID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) List(c echo.Context) error {
	actor, _ := auth.ActorFromEcho(c)
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByBusiness(c.Request().Context(), actor.BusinessID,
		c.QueryParam("search"), pg.Limit, pg.Offset())
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
	var cl Client
	if err := c.Bind(&cl); err != nil {
		return apperr.Validation("invalid request body")
	}
	cl.ID = existing.ID
	cl.BusinessID = existing.BusinessID
	if err := h.svc.Update(c.Request().Context(), &cl); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cl)
}
