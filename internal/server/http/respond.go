package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/repository"
	"github.com/fjod/go_storefront/internal/server/service"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, domain.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondFieldErrors reports request validation failures with a field
// map so clients can annotate inputs instead of parsing the message.
func respondFieldErrors(w http.ResponseWriter, message string, fields map[string]string) {
	respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
		Error:  message,
		Code:   domain.CodeValidation,
		Fields: fields,
	})
}

// respondServiceError maps service and repository errors onto the wire
// taxonomy. Stock conflicts go out with their structured payload.
func respondServiceError(w http.ResponseWriter, err error) {
	var conflict *service.StockConflictError
	switch {
	case errors.As(err, &conflict):
		respondJSON(w, http.StatusConflict, domain.ErrorResponse{
			Error: conflict.Error(),
			Code:  domain.CodeStockConflict,
			Stock: &domain.StockConflict{
				ProductID: conflict.ProductID,
				Available: conflict.Available,
				InCart:    conflict.InCart,
				Requested: conflict.Requested,
			},
		})
	case errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, domain.CodeNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidMethod),
		errors.Is(err, service.ErrBadDeliveryFee),
		errors.Is(err, service.ErrPaymentDetails):
		respondError(w, http.StatusBadRequest, domain.CodeInvalidInput, err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, domain.CodeInternal, "internal server error")
	}
}
