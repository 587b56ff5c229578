package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"topstore/internal/catalog"
	apperrors "topstore/internal/errors"
	"topstore/internal/model"
)

type statusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.Stats())
}

func (s *Server) listOrders(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.Ledger.List())
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	id := c.Param("id")
	found, err := s.state.Ledger.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if !found {
		s.renderError(c, apperrors.ErrOrderNotFound.WithDetails("order "+id))
		return
	}
	order, _ := s.state.Ledger.Get(id)
	c.JSON(http.StatusOK, order)
}

func (s *Server) createProduct(c *gin.Context) {
	var draft catalog.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		s.badRequest(c, err)
		return
	}

	p, err := s.state.Catalog.Create(c.Request.Context(), draft)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	var p model.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		s.badRequest(c, err)
		return
	}
	p.ID = c.Param("id")

	found, err := s.state.Catalog.Update(c.Request.Context(), p)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if !found {
		s.renderError(c, apperrors.ErrProductNotFound.WithDetails("product "+p.ID))
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	removed := s.state.Catalog.Remove(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
