package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edustream/edustream-api/internal/models"
	"github.com/edustream/edustream-api/internal/service"
	appErrors "github.com/edustream/edustream-api/pkg/errors"
	"github.com/edustream/edustream-api/pkg/response"
)

// BoardHandler wires HTTP endpoints to the board service.
type BoardHandler struct {
	service *service.BoardService
}

// NewBoardHandler creates a new handler.
func NewBoardHandler(svc *service.BoardService) *BoardHandler {
	return &BoardHandler{service: svc}
}

// List godoc
// @Summary List boards
// @Description List every curriculum board
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /boards [get]
func (h *BoardHandler) List(c *gin.Context) {
	boards, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, boards)
}

// Create godoc
// @Summary Create board
// @Description Create a curriculum board
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.BoardRequest true "Board payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/boards [post]
func (h *BoardHandler) Create(c *gin.Context) {
	var req models.BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid board payload"))
		return
	}

	board, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, board)
}

// Update godoc
// @Summary Update board
// @Description Update a board; renames cascade to subjects
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Board ID"
// @Param payload body models.BoardRequest true "Board payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/boards/{id} [put]
func (h *BoardHandler) Update(c *gin.Context) {
	var req models.BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid board payload"))
		return
	}

	board, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board)
}

// Delete godoc
// @Summary Delete board
// @Description Remove a curriculum board
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Board ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/boards/{id} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
