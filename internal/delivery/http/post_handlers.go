package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/postly/backend/internal/middleware"
	"github.com/postly/backend/internal/usecase"
)

type listResponse struct {
	Results interface{} `json:"results"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

func listParams(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	posts, total, err := h.postUsecase.List(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list posts")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Results: posts, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) ListPublishedPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	posts, total, err := h.postUsecase.ListPublished(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list posts")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Results: posts, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)
	posts, total, err := h.postUsecase.ListByAuthor(middleware.GetSubject(r.Context()), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list posts")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Results: posts, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	post, err := h.postUsecase.Get(id)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreatePostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.postUsecase.Create(middleware.GetSubject(r.Context()), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	var input usecase.UpdatePostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.postUsecase.Update(middleware.GetSubject(r.Context()), id, input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if err := h.postUsecase.Delete(middleware.GetSubject(r.Context()), id); err != nil {
		writeUsecaseError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
