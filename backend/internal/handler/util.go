package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie the web client stores its token in.
const SessionCookie = "session_token"

var (
	// ErrNoToken is returned by GetUserID when the request carries no token.
	ErrNoToken = errors.New("no authorization token found")
	// ErrNoSubject is returned for a valid token without a subject.
	ErrNoSubject = errors.New("token has no subject")
)

// header returns the request header name, ignoring case.
func header(req events.APIGatewayProxyRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// requestToken prefers a Bearer token over the session cookie.
func requestToken(req events.APIGatewayProxyRequest) string {
	if auth, ok := strings.CutPrefix(header(req, "Authorization"), "Bearer "); ok {
		if auth = strings.TrimSpace(auth); auth != "" {
			return auth
		}
	}
	for _, part := range strings.Split(header(req, "Cookie"), ";") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(part), SessionCookie+"="); ok {
			return v
		}
	}
	return ""
}

// GetUserID returns the subject of the HMAC-signed JWT carried by req.
func GetUserID(req events.APIGatewayProxyRequest, jwtSecret string) (string, error) {
	tokenString := requestToken(req)
	if tokenString == "" {
		return "", ErrNoToken
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return claims.Subject, nil
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return textResponse(http.StatusInternalServerError, "Internal Server Error")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
	}
}

func unauthorized() events.APIGatewayProxyResponse {
	return textResponse(http.StatusUnauthorized, "Unauthorized")
}
