package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/postly/backend/internal/middleware"
	"github.com/postly/backend/internal/usecase"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	products, total, err := h.productUsecase.List(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Results: products, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	product, err := h.productUsecase.Get(id)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.productUsecase.Create(middleware.GetSubject(r.Context()), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	var input usecase.UpdateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.productUsecase.Update(middleware.GetSubject(r.Context()), id, input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if err := h.productUsecase.Delete(middleware.GetSubject(r.Context()), id); err != nil {
		writeUsecaseError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
