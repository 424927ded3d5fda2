package fakeapi

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/utils"
	"github.com/MKhiriev/go-drive-client/models"
)

func (h *Handler) packages(w http.ResponseWriter, r *http.Request) {
	out := make([]models.Package, 0, len(h.state.packages))
	for _, p := range h.state.packages {
		out = append(out, models.Package{ID: p.ID, Name: p.Name, Price: json.Number(p.Price)})
	}
	_, _ = utils.WriteJSON(w, out, http.StatusOK)
}

func (h *Handler) selfPackage(w http.ResponseWriter, r *http.Request) {
	name, err := h.state.packageName(currentUser(r))
	if err != nil {
		h.fail(w, r, "selfPackage", err)
		return
	}
	_, _ = utils.WriteJSON(w, models.CurrentPackageResponse{Package: name}, http.StatusOK)
}

func (h *Handler) initiatePayment(w http.ResponseWriter, r *http.Request) {
	var req models.InitiatePaymentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "initiatePayment", ErrInvalidJSON)
		return
	}

	order, err := h.state.initiatePayment(currentUser(r), req.PackageID)
	if err != nil {
		h.fail(w, r, "initiatePayment", err)
		return
	}

	logger.FromRequest(r).Info().Str("func", "Handler.initiatePayment").Str("order_id", order.OrderID).Msg("payment initiated")
	_, _ = utils.WriteJSON(w, order, http.StatusOK)
}

func (h *Handler) paymentStatus(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentStatusRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "paymentStatus", ErrInvalidJSON)
		return
	}

	result, err := h.state.settlePayment(currentUser(r), req.OrderID, req.Status)
	if err != nil {
		h.fail(w, r, "paymentStatus", err)
		return
	}

	logger.FromRequest(r).Info().Str("func", "Handler.paymentStatus").Str("order_id", result.OrderID).Str("status", result.Status).Msg("payment settled")
	_, _ = utils.WriteJSON(w, result, http.StatusOK)
}
