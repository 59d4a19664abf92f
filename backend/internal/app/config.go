package app

import (
	"os"
	"strconv"
	"strings"

	"github.com/jun/chatmark/backend/internal/handler"
	"github.com/jun/chatmark/backend/internal/secret"
)

// Config is the environment-derived configuration of the render service.
type Config struct {
	DevMode               bool
	FrontendURL           string
	EmojiTable            string
	JWTSecretParam        string
	APIGatewaySecretParam string
	Render                handler.RenderConfig
}

const defaultMaxMessageBytes = 16383

// LoadConfig reads Config from the environment. getenv is usually os.Getenv.
func LoadConfig(getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := Config{
		DevMode:               getenv("DEV_MODE") == "true",
		FrontendURL:           getenv("FRONTEND_URL"),
		EmojiTable:            getenv("EMOJI_TABLE"),
		JWTSecretParam:        getenv("JWT_SECRET_PARAM"),
		APIGatewaySecretParam: getenv("API_GATEWAY_SECRET_PARAM"),
		Render: handler.RenderConfig{
			SiteURL:              strings.TrimRight(getenv("SITE_URL"), "/"),
			ManagedResourcePaths: splitList(getenv("MANAGED_RESOURCE_PATHS")),
			AutolinkedURLSchemes: splitList(getenv("AUTOLINKED_URL_SCHEMES")),
			EnableImageProxy:     getenv("ENABLE_IMAGE_PROXY") == "true",
			MaxMessageBytes:      defaultMaxMessageBytes,
			HighlightStyle:       getenv("HIGHLIGHT_STYLE"),
		},
	}

	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "http://localhost:3000"
	}
	if cfg.JWTSecretParam == "" {
		cfg.JWTSecretParam = secret.JWTSecretParam
	}
	if cfg.APIGatewaySecretParam == "" {
		cfg.APIGatewaySecretParam = secret.APIGatewaySecretParam
	}
	if n, err := strconv.Atoi(getenv("MAX_MESSAGE_BYTES")); err == nil && n >= 0 {
		cfg.Render.MaxMessageBytes = n
	}
	return cfg
}

// splitList parses a comma separated list, dropping blanks. An empty input
// yields nil so that "unset" stays distinguishable from "empty".
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
