package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jun/chatmark/backend/internal/adapter"
	"github.com/jun/chatmark/backend/internal/metrics"
	"github.com/jun/chatmark/backend/internal/model"
	"github.com/jun/chatmark/core/etag"
	"github.com/jun/chatmark/core/markdown"
	"github.com/jun/chatmark/core/textformat"
)

// RenderConfig holds the site-wide settings that clients may not override.
type RenderConfig struct {
	SiteURL              string
	ManagedResourcePaths []string
	AutolinkedURLSchemes []string
	EnableImageProxy     bool
	MaxMessageBytes      int
	HighlightStyle       string
}

// RenderHandler renders chat messages and documents to HTML.
type RenderHandler struct {
	cfg       RenderConfig
	renderer  *markdown.Renderer
	document  *markdown.DocumentRenderer
	emoji     adapter.EmojiStore
	recorder  metrics.Recorder
	logger    *slog.Logger
	jwtSecret string
}

// NewRenderHandler creates a new RenderHandler. store may be nil, in which
// case only system emoji are recognised.
func NewRenderHandler(cfg RenderConfig, store adapter.EmojiStore, recorder metrics.Recorder, logger *slog.Logger, jwtSecret string) *RenderHandler {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderHandler{
		cfg:       cfg,
		renderer:  markdown.NewRenderer(markdown.WithMaxSourceBytes(cfg.MaxMessageBytes)),
		document:  markdown.NewDocumentRenderer(cfg.HighlightStyle),
		emoji:     store,
		recorder:  recorder,
		logger:    logger,
		jwtSecret: jwtSecret,
	}
}

// options merges client settings with the site configuration.
func (h *RenderHandler) options(s textformat.Settings) (textformat.Options, error) {
	opts, err := s.Options()
	if err != nil {
		return textformat.Options{}, err
	}
	opts.SiteURL = h.cfg.SiteURL
	opts.ManagedResourcePaths = h.cfg.ManagedResourcePaths
	opts.AutolinkedURLSchemes = h.cfg.AutolinkedURLSchemes
	opts.ProxyImages = s.ProxyImages && h.cfg.EnableImageProxy
	return opts, nil
}

// Render handles POST /render.
func (h *RenderHandler) Render(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	if _, err := GetUserID(req, h.jwtSecret); err != nil {
		return unauthorized(), nil
	}

	var input model.RenderRequest
	if err := json.Unmarshal([]byte(req.Body), &input); err != nil {
		return textResponse(http.StatusBadRequest, "Invalid request body"), nil
	}
	if input.Mode == "" {
		input.Mode = model.ModeChat
	}

	resp := h.render(ctx, input)
	if resp.StatusCode == http.StatusOK {
		if tag := resp.Headers["ETag"]; etag.Matches(header(req, "If-None-Match"), tag) {
			resp = events.APIGatewayProxyResponse{
				StatusCode: http.StatusNotModified,
				Headers:    map[string]string{"ETag": tag},
			}
		}
	}

	h.recorder.ObserveRenderDuration(input.Mode, time.Since(start))
	h.recorder.IncRenderResult(input.Mode, metrics.ResultForStatus(resp.StatusCode))
	return resp, nil
}

func (h *RenderHandler) render(ctx context.Context, input model.RenderRequest) events.APIGatewayProxyResponse {
	if h.cfg.MaxMessageBytes > 0 && len(input.Message) > h.cfg.MaxMessageBytes {
		return textResponse(http.StatusRequestEntityTooLarge, "Message too large")
	}

	var html string
	switch input.Mode {
	case model.ModeChat:
		opts, err := h.options(input.Options)
		if err != nil {
			return textResponse(http.StatusBadRequest, "Invalid options: "+err.Error())
		}

		emojis, err := adapter.LoadEmojiMap(ctx, h.emoji)
		if err != nil {
			h.logger.ErrorContext(ctx, "load emoji failed", "error", err)
			return textResponse(http.StatusInternalServerError, "Failed to load emoji")
		}

		out, err := h.renderer.Render([]byte(input.Message), markdown.NewChatRenderer(opts, emojis))
		if errors.Is(err, markdown.ErrSourceTooLarge) {
			return textResponse(http.StatusRequestEntityTooLarge, "Message too large")
		}
		if err != nil {
			h.logger.ErrorContext(ctx, "render failed", "mode", input.Mode, "error", err)
			return textResponse(http.StatusInternalServerError, "Failed to render message")
		}
		html = string(out)

	case model.ModeDocument:
		out, err := h.document.Render([]byte(input.Message))
		if err != nil {
			h.logger.ErrorContext(ctx, "render failed", "mode", input.Mode, "error", err)
			return textResponse(http.StatusInternalServerError, "Failed to render document")
		}
		html = string(out)

	default:
		return textResponse(http.StatusBadRequest, "Unknown mode: "+input.Mode)
	}

	h.recorder.ObserveRenderedBytes(input.Mode, len(html))

	rendered := etag.NewRendered(html)
	resp := jsonResponse(http.StatusOK, rendered)
	resp.Headers["ETag"] = rendered.ETag
	return resp
}
