package handler

import (
	"errors"
	"net/http"

	"github.com/ValeenMar/tovaltech-sub001/internal/apierror"
	"github.com/ValeenMar/tovaltech-sub001/internal/dto"
	"github.com/ValeenMar/tovaltech-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.CatalogoService }

func NewProductosHandler(svc service.CatalogoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar productos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) ObtenerPorSKU(c *gin.Context) {
	resp, err := h.svc.ObtenerPorSKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		if errors.Is(err, service.ErrProductoNoEncontrado) {
			c.JSON(http.StatusNotFound, apierror.New("Producto no encontrado"))
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error al obtener el producto"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// InvalidarMarkup drops the cached markup settings in every process.
func (h *ProductosHandler) InvalidarMarkup(c *gin.Context) {
	if err := h.svc.InvalidarMarkup(c.Request.Context()); err != nil {
		// The local snapshot is already gone; only other processes may lag.
		c.JSON(http.StatusAccepted, dto.MarkupInvalidateResponse{Invalidated: true})
		return
	}
	c.JSON(http.StatusOK, dto.MarkupInvalidateResponse{Invalidated: true})
}
