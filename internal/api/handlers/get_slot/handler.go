package get_slot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fairwaylabs/GLM-BookingService/internal/api/handlers"
	"github.com/fairwaylabs/GLM-BookingService/internal/service/ledger"
)

const (
	msgInvalidSlotID = "некорректный ID слота"
	msgSlotNotFound  = "слот не найден"
)

type Handler struct {
	service LedgerService
	logger  Logger
}

func NewHandler(service LedgerService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots/{slotId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slotID, err := strconv.ParseInt(vars["slotId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /slots/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	slot, err := h.service.GetSlot(r.Context(), slotID)
	if err != nil {
		if errors.Is(err, ledger.ErrSlotNotFound) {
			h.logger.Warn("GET /slots/{id} - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)
			return
		}
		h.logger.Error("GET /slots/{id} - Failed to get slot: slot_id=%d, error=%v", slotID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /slots/{id} - Slot retrieved: slot_id=%d, seats_left=%d", slotID, slot.SeatsLeft())
	handlers.RespondJSON(w, http.StatusOK, fromDomainSlot(slot))
}
