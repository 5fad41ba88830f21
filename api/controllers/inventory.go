package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/angelmondragon/backoffice/api/middleware"
	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/api/validators"
	"github.com/angelmondragon/backoffice/internal/inventory"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

// InventoryHandler serves stock reads and bulk writes.
type InventoryHandler struct {
	svc  inventory.Service
	logg *logger.Logger
}

func NewInventoryHandler(svc inventory.Service, logg *logger.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, logg: logg}
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), middleware.CompanyIDFromContext(r.Context()))
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"items": items})
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := validators.ParseIDParam(r, "productId")
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	stock, err := h.svc.Get(r.Context(), middleware.CompanyIDFromContext(r.Context()), productID)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"inventory": stock})
}

func (h *InventoryHandler) Count(w http.ResponseWriter, r *http.Request) {
	total, err := h.svc.Total(r.Context(), middleware.CompanyIDFromContext(r.Context()))
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"total": total})
}

// BulkUpdate accepts either a bare array of updates or {"updates": [...]}.
func (h *InventoryHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := validators.DecodeJSONBody(r, &raw); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	items, err := decodeInventoryUpdates(raw)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	result, err := h.svc.BulkUpdate(r.Context(), middleware.CompanyIDFromContext(r.Context()), items)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, result)
}

func decodeInventoryUpdates(raw json.RawMessage) ([]inventory.UpdateItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Updates json.RawMessage `json:"updates"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, "invalid request body")
		}
		trimmed = bytes.TrimSpace(wrapped.Updates)
	}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var items []inventory.UpdateItem
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&items); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "updates must be a list of {productId, inStock}").WithDetails(map[string]any{"error": err.Error()})
	}
	return items, nil
}
