package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePayURL answers 422 when the amount is missing; the client treats
// that as "nothing to pay" rather than a malformed request.
func (h *PaymentHandler) CreatePayURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.PayURLRequest
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			response.Error(w, errors.UnprocessableError("amount is required").WithError(err))
			return
		}

		link, err := h.paymentService.CreatePaymentURL(r.Context(), req.Amount)
		if err != nil {
			logger.Warn("Payment URL request failed", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.PayURLResponse{OK: true, PayURL: link.PayURL})
	}
}

func (h *PaymentHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		sessionID, ok := sessionID(w, r)
		if !ok {
			return
		}

		link, err := h.paymentService.Checkout(r.Context(), sessionID)
		if err != nil {
			logger.Warn("Checkout failed", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.PayURLResponse{OK: true, PayURL: link.PayURL, Amount: link.Amount})
	}
}
