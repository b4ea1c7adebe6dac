package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edustream/edustream-api/internal/models"
	"github.com/edustream/edustream-api/internal/service"
	appErrors "github.com/edustream/edustream-api/pkg/errors"
	"github.com/edustream/edustream-api/pkg/response"
)

// MaterialHandler wires HTTP endpoints to the material service.
type MaterialHandler struct {
	service *service.MaterialService
}

// NewMaterialHandler creates a new handler.
func NewMaterialHandler(svc *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{service: svc}
}

// ListForSubject godoc
// @Summary List subject materials
// @Description List materials for a subject; requires an active subscription
// @Tags Materials
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id}/materials [get]
func (h *MaterialHandler) ListForSubject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	materials, err := h.service.ListForSubject(c.Request.Context(), claims.Email, claims.Role, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials)
}

// ListAll godoc
// @Summary List all materials
// @Description List every material across subjects
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/materials [get]
func (h *MaterialHandler) ListAll(c *gin.Context) {
	materials, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials)
}

// Create godoc
// @Summary Create material
// @Description Attach a pdf or video material to a subject
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.MaterialRequest true "Material payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/materials [post]
func (h *MaterialHandler) Create(c *gin.Context) {
	var req models.MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid material payload"))
		return
	}

	material, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, material)
}

// Update godoc
// @Summary Update material
// @Description Update a study material
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Param payload body models.MaterialRequest true "Material payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/materials/{id} [put]
func (h *MaterialHandler) Update(c *gin.Context) {
	var req models.MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid material payload"))
		return
	}

	material, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, material)
}

// Delete godoc
// @Summary Delete material
// @Description Remove a study material
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Seed godoc
// @Summary Seed materials
// @Description Replace all materials with demo content
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/materials/seed [post]
func (h *MaterialHandler) Seed(c *gin.Context) {
	count, err := h.service.Seed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"seeded": count})
}
