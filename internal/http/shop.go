package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"topstore/internal/catalog"
	apperrors "topstore/internal/errors"
	"topstore/internal/model"
)

var errInvalidVariant = apperrors.NewWithCode(
	apperrors.ErrorTypeValidation,
	"Selected size or color is not available",
	"INVALID_VARIANT",
)

type cartView struct {
	Items         []model.CartItem `json:"items"`
	Subtotal      int              `json:"subtotal"`
	Count         int              `json:"count"`
	TotalWeightKg float64          `json:"totalWeightKg"`
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) listProducts(c *gin.Context) {
	products := s.state.Catalog.List(catalog.Filter{
		Category: model.Category(c.Query("category")),
		Search:   c.Query("q"),
	})
	c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c *gin.Context) {
	p, ok := s.state.Catalog.Get(c.Param("id"))
	if !ok {
		s.renderError(c, apperrors.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) cart() cartView {
	cart := s.state.Cart
	return cartView{
		Items:         cart.Items(),
		Subtotal:      cart.Subtotal(),
		Count:         cart.Count(),
		TotalWeightKg: cart.TotalWeight(),
	}
}

func (s *Server) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, s.cart())
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	p, ok := s.state.Catalog.Get(req.ProductID)
	if !ok {
		s.renderError(c, apperrors.ErrProductNotFound)
		return
	}
	if !p.InStock {
		s.renderError(c, apperrors.ErrOutOfStock.WithDetails("product "+p.ID))
		return
	}
	size, ok := pickVariant(req.Size, p.Sizes)
	if !ok {
		s.renderError(c, errInvalidVariant.WithDetails("size "+req.Size))
		return
	}
	color, ok := pickVariant(req.Color, p.Colors)
	if !ok {
		s.renderError(c, errInvalidVariant.WithDetails("color "+req.Color))
		return
	}

	item := s.state.Cart.Add(c.Request.Context(), p, size, color)
	s.state.Session.RefreshQuote(c.Request.Context())

	c.JSON(http.StatusCreated, gin.H{"item": item, "cart": s.cart()})
}

func (s *Server) updateCartItem(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	updated := s.state.Cart.UpdateQuantity(c.Request.Context(), c.Param("cartId"), req.Quantity)
	if updated {
		s.state.Session.RefreshQuote(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated, "cart": s.cart()})
}

func (s *Server) removeCartItem(c *gin.Context) {
	removed := s.state.Cart.Remove(c.Request.Context(), c.Param("cartId"))
	if removed {
		s.state.Session.RefreshQuote(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed, "cart": s.cart()})
}

func (s *Server) clearCart(c *gin.Context) {
	s.state.Cart.Clear(c.Request.Context())
	s.state.Session.RefreshQuote(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"cart": s.cart()})
}

// pickVariant пустое значение - первый доступный вариант
func pickVariant(value string, options []string) (string, bool) {
	if value == "" {
		if len(options) == 0 {
			return "", true
		}
		return options[0], true
	}
	for _, o := range options {
		if o == value {
			return value, true
		}
	}
	return "", false
}
