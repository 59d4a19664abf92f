package handler_test

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jun/chatmark/backend/internal/metrics"
)

const testUserID = "test-user-123"

func makeToken(userID string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(1 * time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte(testJWTSecret))
	return signed
}

func makeRequest(method, path, body string) events.APIGatewayProxyRequest {
	return makeRequestAs(testUserID, method, path, body)
}

func makeRequestAs(userID, method, path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Body:       body,
		Headers: map[string]string{
			"Authorization": "Bearer " + makeToken(userID),
			"Content-Type":  "application/json",
		},
		PathParameters: map[string]string{},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingRecorder keeps the result labels it was given.
type recordingRecorder struct {
	metrics.NoopRecorder
	mu      sync.Mutex
	results []string
}

func (r *recordingRecorder) IncRenderResult(mode string, result metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, "render:"+mode+":"+string(result))
}

func (r *recordingRecorder) IncEmojiOperation(op string, result metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, "emoji:"+op+":"+string(result))
}
