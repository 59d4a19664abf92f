package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jun/chatmark/backend/internal/adapter/memory"
	"github.com/jun/chatmark/backend/internal/model"
)

const (
	testJWTSecret    = "test-secret"
	testOriginSecret = "origin-secret"
)

func newTestApp(devMode bool) *App {
	cfg := LoadConfig(func(key string) string {
		switch key {
		case "SITE_URL":
			return "https://chat.example.com/"
		case "FRONTEND_URL":
			return "https://app.example.com"
		}
		return ""
	})
	cfg.DevMode = devMode
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, memory.NewEmojiStore(nil, ""), testJWTSecret, testOriginSecret, logger)
}

func authed(method, path, body string) events.APIGatewayProxyRequest {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte(testJWTSecret))
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Body:       body,
		Headers: map[string]string{
			"Authorization":   "Bearer " + signed,
			"X-Origin-Verify": testOriginSecret,
		},
	}
}

func TestHandleRequest_Preflight(t *testing.T) {
	app := newTestApp(false)

	resp, err := app.HandleRequest(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "OPTIONS", Path: "/api/render"})
	if err != nil {
		t.Fatalf("HandleRequest returned error: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
	if resp.Headers["Access-Control-Allow-Origin"] != "https://app.example.com" {
		t.Errorf("Unexpected CORS origin %q", resp.Headers["Access-Control-Allow-Origin"])
	}
	if resp.Headers["Access-Control-Expose-Headers"] != "ETag" {
		t.Errorf("Expected ETag to be exposed, got %q", resp.Headers["Access-Control-Expose-Headers"])
	}
}

func TestHandleRequest_OriginVerify(t *testing.T) {
	app := newTestApp(false)

	req := authed("POST", "/api/render", `{"message":"hi"}`)
	delete(req.Headers, "X-Origin-Verify")
	resp, _ := app.HandleRequest(context.Background(), req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 without origin header, got %d", resp.StatusCode)
	}

	dev := newTestApp(true)
	resp, _ = dev.HandleRequest(context.Background(), req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected dev mode to skip the origin check, got %d", resp.StatusCode)
	}
}

func TestHandleRequest_OriginSecretUnresolved(t *testing.T) {
	cfg := newTestApp(false).cfg
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := New(cfg, memory.NewEmojiStore(nil, ""), testJWTSecret, "", logger)

	req := authed("POST", "/api/render", `{"message":"hi"}`)
	delete(req.Headers, "X-Origin-Verify")
	resp, _ := app.HandleRequest(context.Background(), req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 without origin header, got %d", resp.StatusCode)
	}

	req.Headers["X-Origin-Verify"] = ""
	resp, _ = app.HandleRequest(context.Background(), req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 with empty origin header, got %d", resp.StatusCode)
	}

	req.Headers["x-origin-verify"] = testOriginSecret
	resp, _ = app.HandleRequest(context.Background(), req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 when the secret is unresolved, got %d", resp.StatusCode)
	}
}

func TestHandleRequest_Render(t *testing.T) {
	app := newTestApp(false)

	resp, _ := app.HandleRequest(context.Background(), authed("POST", "/api/render", `{"message":"[x](https://chat.example.com/channels/town)"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	if resp.Headers["ETag"] == "" {
		t.Error("Expected an ETag header")
	}
	if !strings.Contains(resp.Body, `data-link=\"/channels/town\"`) {
		t.Errorf("Expected site link routing from SITE_URL, got %s", resp.Body)
	}

	if got := counterValue(t, app, "chatmark_render_results_total", "success"); got != 1 {
		t.Errorf("Expected one successful render recorded, got %v", got)
	}
}

func counterValue(t *testing.T, app *App, name, result string) float64 {
	t.Helper()
	mfs, err := app.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == result {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}

func TestHandleRequest_EmojiRoutes(t *testing.T) {
	app := newTestApp(false)
	ctx := context.Background()

	resp, _ := app.HandleRequest(ctx, authed("POST", "/emoji", `{"name":"shipit","imageUrl":"https://x/s.png"}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.StatusCode, resp.Body)
	}
	var created model.CustomEmoji
	if err := json.Unmarshal([]byte(resp.Body), &created); err != nil {
		t.Fatalf("Failed to decode emoji: %v", err)
	}

	resp, _ = app.HandleRequest(ctx, authed("GET", "/api/emoji", ""))
	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Body, "shipit") {
		t.Errorf("Expected list with shipit, got %d: %s", resp.StatusCode, resp.Body)
	}

	resp, _ = app.HandleRequest(ctx, authed("DELETE", "/api/emoji/"+created.ID, ""))
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d: %s", resp.StatusCode, resp.Body)
	}
}

func TestHandleRequest_NotFound(t *testing.T) {
	app := newTestApp(false)

	for _, req := range []events.APIGatewayProxyRequest{
		authed("GET", "/render", ""),
		authed("DELETE", "/emoji/", ""),
		authed("DELETE", "/emoji/a/b", ""),
		authed("GET", "/notes", ""),
	} {
		resp, _ := app.HandleRequest(context.Background(), req)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", req.HTTPMethod, req.Path, resp.StatusCode)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	env := map[string]string{
		"DEV_MODE":               "true",
		"SITE_URL":               "https://chat.example.com/",
		"MANAGED_RESOURCE_PATHS": "trusted, , other ",
		"AUTOLINKED_URL_SCHEMES": "http,https,mailto",
		"ENABLE_IMAGE_PROXY":     "true",
		"MAX_MESSAGE_BYTES":      "4000",
		"HIGHLIGHT_STYLE":        "monokai",
	}
	cfg := LoadConfig(func(k string) string { return env[k] })

	if !cfg.DevMode {
		t.Error("Expected DevMode")
	}
	if cfg.Render.SiteURL != "https://chat.example.com" {
		t.Errorf("SiteURL = %q", cfg.Render.SiteURL)
	}
	if len(cfg.Render.ManagedResourcePaths) != 2 || cfg.Render.ManagedResourcePaths[1] != "other" {
		t.Errorf("ManagedResourcePaths = %v", cfg.Render.ManagedResourcePaths)
	}
	if len(cfg.Render.AutolinkedURLSchemes) != 3 {
		t.Errorf("AutolinkedURLSchemes = %v", cfg.Render.AutolinkedURLSchemes)
	}
	if !cfg.Render.EnableImageProxy || cfg.Render.MaxMessageBytes != 4000 || cfg.Render.HighlightStyle != "monokai" {
		t.Errorf("Unexpected render config %+v", cfg.Render)
	}
	if cfg.JWTSecretParam != "/chatmark/jwt-secret" || cfg.FrontendURL != "http://localhost:3000" {
		t.Errorf("Unexpected defaults %+v", cfg)
	}

	empty := LoadConfig(func(string) string { return "" })
	if empty.Render.AutolinkedURLSchemes != nil {
		t.Error("Expected nil schemes when unset")
	}
	if empty.Render.MaxMessageBytes != defaultMaxMessageBytes {
		t.Errorf("MaxMessageBytes = %d", empty.Render.MaxMessageBytes)
	}
}
