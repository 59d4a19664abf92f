package app

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jun/chatmark/backend/internal/adapter"
	"github.com/jun/chatmark/backend/internal/adapter/memory"
	"github.com/jun/chatmark/backend/internal/handler"
	"github.com/jun/chatmark/backend/internal/metrics"
	"github.com/jun/chatmark/backend/internal/secret"
)

// App holds the dependencies for the Lambda function.
type App struct {
	cfg              Config
	renderHandler    *handler.RenderHandler
	emojiHandler     *handler.EmojiHandler
	logger           *slog.Logger
	registry         *prometheus.Registry
	apiGatewaySecret string
}

// New wires an App from already constructed dependencies.
func New(cfg Config, store adapter.EmojiStore, jwtSecret, apiGatewaySecret string, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	return &App{
		cfg:              cfg,
		renderHandler:    handler.NewRenderHandler(cfg.Render, store, recorder, logger, jwtSecret),
		emojiHandler:     handler.NewEmojiHandler(store, recorder, logger, jwtSecret),
		logger:           logger,
		registry:         reg,
		apiGatewaySecret: apiGatewaySecret,
	}
}

// NewApp initializes the application from the environment and AWS.
func NewApp(ctx context.Context, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := LoadConfig(nil)

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		panic(fmt.Sprintf("unable to load SDK config, %v", err))
	}

	var resolver secret.Resolver
	if cfg.DevMode {
		resolver = secret.NewEnvResolver()
		logger.Info("using EnvResolver", "dev_mode", true)
	} else {
		resolver = secret.NewSSMResolver(ssm.NewFromConfig(awsCfg))
		logger.Info("using SSMResolver")
	}

	jwtDefault := ""
	if cfg.DevMode {
		jwtDefault = "default-dev-secret"
	}
	jwtSecret, err := secret.Fallback(ctx, resolver, cfg.JWTSecretParam, jwtDefault)
	if err != nil {
		logger.Warn("failed to resolve JWT secret", "param", cfg.JWTSecretParam, "error", err)
	}

	apiGatewaySecret, err := resolver.GetSecret(ctx, cfg.APIGatewaySecretParam)
	if err != nil && !cfg.DevMode {
		logger.Error("failed to resolve API gateway secret; rejecting all requests", "param", cfg.APIGatewaySecretParam, "error", err)
	}

	store := memory.NewEmojiStore(dynamodb.NewFromConfig(awsCfg), cfg.EmojiTable)

	return New(cfg, store, jwtSecret, apiGatewaySecret, logger)
}

// Registry returns the registry the App's metrics are registered on.
func (app *App) Registry() *prometheus.Registry {
	return app.registry
}

// HandleRequest routes API Gateway requests to the appropriate handler.
func (app *App) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := req.Path
	method := req.HTTPMethod

	app.logger.DebugContext(ctx, "request", "method", method, "path", path)

	// CORS Preflight
	if method == http.MethodOptions {
		return app.corsResponse(events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent}), nil
	}

	// Only CloudFront knows the origin secret.
	if !app.cfg.DevMode && !app.originVerified(req) {
		app.logger.WarnContext(ctx, "missing or invalid X-Origin-Verify header", "path", path)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusForbidden,
			Body:       "Forbidden: Access denied",
		}, nil
	}

	// Strip /api prefix if present (for CloudFront proxying)
	path = strings.TrimPrefix(path, "/api")

	if req.PathParameters == nil {
		req.PathParameters = make(map[string]string)
	}

	switch {
	case path == "/render" && method == http.MethodPost:
		return app.corsResponse(app.must(app.renderHandler.Render(ctx, req))), nil

	case path == "/emoji" && method == http.MethodGet:
		return app.corsResponse(app.must(app.emojiHandler.ListEmoji(ctx, req))), nil

	case path == "/emoji" && method == http.MethodPost:
		return app.corsResponse(app.must(app.emojiHandler.CreateEmoji(ctx, req))), nil

	case strings.HasPrefix(path, "/emoji/") && method == http.MethodDelete:
		id := strings.Trim(strings.TrimPrefix(path, "/emoji/"), "/")
		if id == "" || strings.Contains(id, "/") {
			break
		}
		req.PathParameters["id"] = id
		return app.corsResponse(app.must(app.emojiHandler.DeleteEmoji(ctx, req))), nil
	}

	return app.corsResponse(events.APIGatewayProxyResponse{
		StatusCode: http.StatusNotFound,
		Body:       fmt.Sprintf("Not Found: %s %s", method, path),
	}), nil
}

// corsResponse adds CORS headers to an API Gateway response.
// originVerified reports whether the request carries the origin secret.
// An unresolved secret never matches.
func (app *App) originVerified(req events.APIGatewayProxyRequest) bool {
	if app.apiGatewaySecret == "" {
		return false
	}
	got := req.Headers["X-Origin-Verify"]
	if got == "" {
		got = req.Headers["x-origin-verify"]
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(app.apiGatewaySecret)) == 1
}

func (app *App) corsResponse(resp events.APIGatewayProxyResponse) events.APIGatewayProxyResponse {
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	resp.Headers["Access-Control-Allow-Origin"] = app.cfg.FrontendURL
	resp.Headers["Access-Control-Allow-Credentials"] = "true"
	resp.Headers["Access-Control-Allow-Methods"] = "GET,POST,DELETE,OPTIONS"
	resp.Headers["Access-Control-Allow-Headers"] = "Content-Type,Authorization,If-None-Match"
	resp.Headers["Access-Control-Expose-Headers"] = "ETag"
	return resp
}

// must unwraps a handler response, turning an error into a 500.
func (app *App) must(resp events.APIGatewayProxyResponse, err error) events.APIGatewayProxyResponse {
	if err != nil {
		app.logger.Error("handler error", "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Body: "Internal Server Error"}
	}
	return resp
}
