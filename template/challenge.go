package template

import (
	"encoding/json"

	"github.com/paygate-labs/x402-verify-go/types"
	"github.com/paygate-labs/x402-verify-go/x402err"
)

// DefaultJSONError is used in the JSON challenge when no error text is
// given.
const DefaultJSONError = "X-PAYMENT header is required"

// RenderJSON renders the 402 challenge body: {x402Version, error,
// accepts}, with each requirement in its canonical field order.
func RenderJSON(requirements []types.PaymentRequirements, errorMessage string) (string, error) {
	if errorMessage == "" {
		errorMessage = DefaultJSONError
	}
	if requirements == nil {
		requirements = []types.PaymentRequirements{}
	}

	body, err := json.Marshal(types.PaymentRequiredResponse{
		X402Version: types.X402Version1,
		Error:       errorMessage,
		Accepts:     requirements,
	})
	if err != nil {
		return "", x402err.Internal("failed to marshal 402 challenge: %v", err)
	}
	return string(body), nil
}
