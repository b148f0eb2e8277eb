package port

import (
	"context"

	"suggest/internal/domain"
)

// ModelOptions are the concrete provider settings for one model call.
type ModelOptions struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
}

// GenerateRequest asks the model for structured output. The gateway
// decodes the response into out and treats decode failure the same as a
// network failure, so callers see one error mode and fall back.
type GenerateRequest struct {
	Prompt        string
	SystemMessage string
	Options       ModelOptions
}

// ModelGateway is the structured-output model endpoint. Implementations
// must validate the response shape before returning; out is a pointer
// to the expected response struct.
type ModelGateway interface {
	Generate(ctx context.Context, req GenerateRequest, out any) error
}

// TierResolver maps a logical model tier to provider settings.
type TierResolver interface {
	Resolve(tier domain.ModelTier) ModelOptions
}
