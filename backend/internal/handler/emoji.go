package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jun/chatmark/backend/internal/adapter"
	"github.com/jun/chatmark/backend/internal/metrics"
	"github.com/jun/chatmark/backend/internal/model"
	"github.com/jun/chatmark/core/emoji"
	"github.com/jun/chatmark/core/urlutil"
)

// EmojiHandler manages custom emoji.
type EmojiHandler struct {
	store     adapter.EmojiStore
	recorder  metrics.Recorder
	logger    *slog.Logger
	jwtSecret string
}

// NewEmojiHandler creates a new EmojiHandler.
func NewEmojiHandler(store adapter.EmojiStore, recorder metrics.Recorder, logger *slog.Logger, jwtSecret string) *EmojiHandler {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmojiHandler{store: store, recorder: recorder, logger: logger, jwtSecret: jwtSecret}
}

func (h *EmojiHandler) done(op string, resp events.APIGatewayProxyResponse) (events.APIGatewayProxyResponse, error) {
	h.recorder.IncEmojiOperation(op, metrics.ResultForStatus(resp.StatusCode))
	return resp, nil
}

// ListEmoji handles GET /emoji.
func (h *EmojiHandler) ListEmoji(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if _, err := GetUserID(req, h.jwtSecret); err != nil {
		return h.done("list", unauthorized())
	}

	list, err := h.store.ListEmoji(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list emoji failed", "error", err)
		return h.done("list", textResponse(http.StatusInternalServerError, "Failed to list emoji"))
	}
	return h.done("list", jsonResponse(http.StatusOK, list))
}

// CreateEmoji handles POST /emoji.
func (h *EmojiHandler) CreateEmoji(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, err := GetUserID(req, h.jwtSecret)
	if err != nil {
		return h.done("create", unauthorized())
	}

	var input model.CreateEmojiRequest
	if err := json.Unmarshal([]byte(req.Body), &input); err != nil {
		return h.done("create", textResponse(http.StatusBadRequest, "Invalid request body"))
	}

	input.Name = strings.ToLower(strings.TrimSpace(input.Name))
	if err := emoji.ValidateName(input.Name); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, emoji.ErrSystemName) {
			status = http.StatusConflict
		}
		return h.done("create", textResponse(status, err.Error()))
	}
	if !validImageURL(input.ImageURL) {
		return h.done("create", textResponse(http.StatusBadRequest, "imageUrl must be an http or https URL"))
	}

	created, err := h.store.CreateEmoji(ctx, model.CustomEmoji{
		Name:      input.Name,
		CreatorID: userID,
		ImageURL:  input.ImageURL,
	})
	if errors.Is(err, adapter.ErrConflict) {
		return h.done("create", textResponse(http.StatusConflict, "Emoji name already exists"))
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "create emoji failed", "name", input.Name, "error", err)
		return h.done("create", textResponse(http.StatusInternalServerError, "Failed to create emoji"))
	}

	h.logger.InfoContext(ctx, "emoji created", "id", created.ID, "name", created.Name, "user", userID)
	return h.done("create", jsonResponse(http.StatusCreated, created))
}

// DeleteEmoji handles DELETE /emoji/{id}.
func (h *EmojiHandler) DeleteEmoji(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, err := GetUserID(req, h.jwtSecret)
	if err != nil {
		return h.done("delete", unauthorized())
	}

	id := req.PathParameters["id"]
	if id == "" {
		return h.done("delete", textResponse(http.StatusBadRequest, "Missing emoji ID"))
	}

	err = h.store.DeleteEmoji(ctx, id, userID)
	switch {
	case errors.Is(err, adapter.ErrNotFound):
		return h.done("delete", textResponse(http.StatusNotFound, "Emoji not found"))
	case errors.Is(err, adapter.ErrForbidden):
		return h.done("delete", textResponse(http.StatusForbidden, "Only the creator can delete this emoji"))
	case err != nil:
		h.logger.ErrorContext(ctx, "delete emoji failed", "id", id, "error", err)
		return h.done("delete", textResponse(http.StatusInternalServerError, "Failed to delete emoji"))
	}

	return h.done("delete", events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent})
}

func validImageURL(raw string) bool {
	scheme, ok := urlutil.GetScheme(raw)
	if !ok {
		return false
	}
	scheme = strings.ToLower(scheme)
	return (scheme == "http" || scheme == "https") && urlutil.IsURLSafe(raw)
}
