package handler

import (
	"errors"
	"net/http"

	"github.com/ValeenMar/tovaltech-sub001/internal/apierror"
	"github.com/ValeenMar/tovaltech-sub001/internal/dto"
	"github.com/ValeenMar/tovaltech-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoriasHandler struct{ svc service.CategoriaService }

func NewCategoriasHandler(svc service.CategoriaService) *CategoriasHandler {
	return &CategoriasHandler{svc: svc}
}

func (h *CategoriasHandler) Listar(c *gin.Context) {
	list, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar categorías"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *CategoriasHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), c.Param("nombre"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoriaNoEncontrada):
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		case errors.Is(err, service.ErrPadreInvalido):
			c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, apierror.New("Error al actualizar la categoría"))
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoriasHandler) MarkupGlobal(c *gin.Context) {
	resp, err := h.svc.MarkupGlobal(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error al leer el markup global"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoriasHandler) ActualizarMarkupGlobal(c *gin.Context) {
	var req dto.MarkupGlobalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ActualizarMarkupGlobal(c.Request.Context(), req.MarkupPct); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error al actualizar el markup global"))
		return
	}
	c.JSON(http.StatusOK, dto.MarkupGlobalResponse{MarkupPct: req.MarkupPct})
}
