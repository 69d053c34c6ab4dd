package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/all-in-blog/internal/auth"
	"github.com/hongminglow/all-in-blog/internal/http/respond"
	"github.com/hongminglow/all-in-blog/internal/models/dto"
	"github.com/hongminglow/all-in-blog/internal/service"
)

// PostHandler owns the post endpoints.
type PostHandler struct {
	posts  *service.Posts
	logger *zap.Logger
}

func NewPostHandler(posts *service.Posts, logger *zap.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// Routes attaches the post endpoints. gate guards writes.
func (h *PostHandler) Routes(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Get("/posts", h.handleList)
	r.With(gate).Post("/posts", h.handleCreate)
}

func (h *PostHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePostRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.posts.CreatePost(r.Context(), auth.OptionalIdentity(r.Context()), req)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			respond.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.Error("create post failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, service.MsgServerError)
		return
	}
	if !res.Error.Empty() {
		respond.JSON(w, failureStatus(res.Error, http.StatusBadRequest), res.Error.Error(), res)
		return
	}
	respond.JSON(w, http.StatusCreated, "post created", res)
}

func (h *PostHandler) handleList(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = &n
	}
	posts, err := h.posts.ListPosts(r.Context(), limit)
	if err != nil {
		h.logger.Error("list posts failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, service.MsgServerError)
		return
	}
	respond.JSON(w, http.StatusOK, "posts", posts)
}
