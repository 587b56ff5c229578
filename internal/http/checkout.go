package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"topstore/internal/checkout"
	apperrors "topstore/internal/errors"
	"topstore/internal/model"
)

type deliveryRequest struct {
	OptionID string `json:"optionId" binding:"required"`
}

type checkoutErrorResponse struct {
	Error    *apperrors.AppError `json:"error"`
	Checkout checkout.View       `json:"checkout"`
}

func (s *Server) getCheckout(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.Session.Snapshot())
}

// updateDetails с ?wait=true отвечает после завершения расчета доставки
func (s *Server) updateDetails(c *gin.Context) {
	var details model.UserDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		s.badRequest(c, err)
		return
	}

	done, err := s.state.Session.UpdateDetails(c.Request.Context(), details)
	if err != nil {
		s.renderCheckoutError(c, err)
		return
	}
	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		select {
		case <-done:
		case <-c.Request.Context().Done():
		}
	}
	c.JSON(http.StatusOK, s.state.Session.Snapshot())
}

func (s *Server) selectDelivery(c *gin.Context) {
	var req deliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := s.state.Session.SelectDelivery(req.OptionID); err != nil {
		s.renderCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.state.Session.Snapshot())
}

func (s *Server) confirmDetails(c *gin.Context) {
	if err := s.state.Session.ConfirmDetails(); err != nil {
		s.renderCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.state.Session.Snapshot())
}

func (s *Server) back(c *gin.Context) {
	if err := s.state.Session.Back(); err != nil {
		s.renderCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.state.Session.Snapshot())
}

func (s *Server) pay(c *gin.Context) {
	var instrument model.PaymentInstrument
	if err := c.ShouldBindJSON(&instrument); err != nil {
		s.badRequest(c, err)
		return
	}

	orderID, err := s.state.Session.Pay(c.Request.Context(), instrument)
	if err != nil {
		s.renderCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"orderId":  orderID,
		"checkout": s.state.Session.Snapshot(),
	})
}

func (s *Server) resetCheckout(c *gin.Context) {
	if err := s.state.Session.Reset(); err != nil {
		s.renderCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.state.Session.Snapshot())
}

// renderCheckoutError ошибка вместе с текущим состоянием оформления,
// чтобы клиент показал ее на нужном шаге
func (s *Server) renderCheckoutError(c *gin.Context, err error) {
	appErr, status := s.appError(c, err)
	c.AbortWithStatusJSON(status, checkoutErrorResponse{
		Error:    appErr,
		Checkout: s.state.Session.Snapshot(),
	})
}
