package controllers

import (
	"net/http"

	"github.com/angelmondragon/backoffice/api/middleware"
	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/api/validators"
	productsvc "github.com/angelmondragon/backoffice/internal/products"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

// ProductsHandler serves the company catalog.
type ProductsHandler struct {
	svc            productsvc.Service
	logg           *logger.Logger
	maxUploadBytes int64
}

// NewProductsHandler builds the product handlers. maxUploadBytes bounds multipart bodies.
func NewProductsHandler(svc productsvc.Service, logg *logger.Logger, maxUploadBytes int64) *ProductsHandler {
	return &ProductsHandler{svc: svc, logg: logg, maxUploadBytes: maxUploadBytes}
}

func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context(), middleware.CompanyIDFromContext(r.Context()))
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, products)
}

func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := validators.ParseIDParam(r, "id")
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	product, err := h.svc.Get(r.Context(), middleware.CompanyIDFromContext(r.Context()), id)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, product)
}

func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil {
		responses.WriteError(r.Context(), h.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return
	}

	var input productsvc.CreateInput
	uploads, err := decodeProductRequest(r, h.maxUploadBytes, &input)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	product, err := h.svc.Create(r.Context(), actor.ID, actor.CompanyID, input, uploads)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, product)
}

func (h *ProductsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := validators.ParseIDParam(r, "id")
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	var input productsvc.PatchInput
	uploads, err := decodeProductRequest(r, h.maxUploadBytes, &input)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	product, err := h.svc.Patch(r.Context(), middleware.CompanyIDFromContext(r.Context()), id, input, uploads)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, product)
}

func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := validators.ParseIDParam(r, "id")
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	deleted, err := h.svc.Delete(r.Context(), middleware.CompanyIDFromContext(r.Context()), id)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"deleted": deleted})
}
