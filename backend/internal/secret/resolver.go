// Package secret resolves the signing keys the render service needs, either
// from SSM Parameter Store or, in development, from the environment.
package secret

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Default parameter names.
const (
	JWTSecretParam        = "/chatmark/jwt-secret"
	APIGatewaySecretParam = "/chatmark/api-gateway-secret"
)

// SSMClient is the subset of *ssm.Client methods used by SSMResolver.
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Resolver retrieves secret values by parameter name.
type Resolver interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// SSMResolver reads SecureString parameters. Values are cached for the
// lifetime of the resolver, which in Lambda is one warm container.
type SSMResolver struct {
	client SSMClient

	mu    sync.Mutex
	cache map[string]string
}

// NewSSMResolver returns a Resolver backed by SSM Parameter Store.
func NewSSMResolver(client SSMClient) *SSMResolver {
	return &SSMResolver{client: client, cache: make(map[string]string)}
}

func (r *SSMResolver) GetSecret(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	v, ok := r.cache[name]
	r.mu.Unlock()
	if ok {
		return v, nil
	}

	// The lock is not held during the call; concurrent misses for one
	// name may each fetch it, which is harmless.
	out, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("ssm get parameter %q: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("ssm parameter %q has no value", name)
	}

	r.mu.Lock()
	r.cache[name] = *out.Parameter.Value
	r.mu.Unlock()
	return *out.Parameter.Value, nil
}

// EnvResolver reads the variable named after the last path segment of the
// parameter, so "/chatmark/jwt-secret" becomes JWT_SECRET.
type EnvResolver struct {
	lookup func(string) (string, bool)
}

// NewEnvResolver returns a Resolver that reads from environment variables.
func NewEnvResolver() *EnvResolver {
	return &EnvResolver{lookup: os.LookupEnv}
}

func (r *EnvResolver) GetSecret(_ context.Context, name string) (string, error) {
	envName := paramNameToEnvVar(name)
	val, _ := r.lookup(envName)
	if val == "" {
		return "", fmt.Errorf("environment variable %q (from param %q) is not set", envName, name)
	}
	return val, nil
}

// Fallback returns the value of name, or def when the resolver fails and
// def is non-empty.
func Fallback(ctx context.Context, r Resolver, name, def string) (string, error) {
	v, err := r.GetSecret(ctx, name)
	if err != nil {
		if def != "" {
			return def, nil
		}
		return "", err
	}
	return v, nil
}

func paramNameToEnvVar(name string) string {
	parts := strings.Split(strings.TrimRight(name, "/"), "/")
	last := parts[len(parts)-1]
	return strings.ToUpper(strings.ReplaceAll(last, "-", "_"))
}
