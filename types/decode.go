package types

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/paygate-labs/x402-verify-go/x402err"
)

// MaxEncodedPayloadSize caps the encoded payload accepted by DecodePayment.
// Anything larger is rejected before base64 decoding.
const MaxEncodedPayloadSize = 64 * 1024

// DecodePayment decodes the base64 JSON payment payload carried in the
// X-PAYMENT header. The input is attacker-controlled: every field is
// validated against the closed enum and format set before the payload is
// returned, so downstream logic never sees an unrecognized shape. All
// failures are x402err.KindInvalidInput.
func DecodePayment(encoded string) (PaymentPayload, error) {
	var payload PaymentPayload

	if encoded == "" {
		return payload, x402err.InvalidInput("payment payload is empty")
	}
	if len(encoded) > MaxEncodedPayloadSize {
		return payload, x402err.InvalidInput("payment payload exceeds %d bytes", MaxEncodedPayloadSize)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return payload, x402err.InvalidInput("payment payload is not valid base64: %v", err)
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, x402err.InvalidInput("payment payload is not valid JSON: %v", err)
	}

	if payload.X402Version != X402Version1 {
		return PaymentPayload{}, x402err.InvalidInput("unsupported x402 version: %d", payload.X402Version)
	}
	if !payload.Scheme.IsValid() {
		return PaymentPayload{}, x402err.InvalidInput("unrecognized scheme: %q", payload.Scheme)
	}
	if !payload.Network.IsSupported() {
		return PaymentPayload{}, x402err.InvalidInput("unrecognized network: %q", payload.Network)
	}

	auth := payload.Payload.Authorization
	if !common.IsHexAddress(auth.From) {
		return PaymentPayload{}, x402err.InvalidInput("authorization from is not a valid address: %q", auth.From)
	}
	if !common.IsHexAddress(auth.To) {
		return PaymentPayload{}, x402err.InvalidInput("authorization to is not a valid address: %q", auth.To)
	}
	if !isCanonicalUint(auth.Value) {
		return PaymentPayload{}, x402err.InvalidInput("authorization value is not a canonical unsigned integer: %q", auth.Value)
	}
	validAfter, err := parseTimestamp(auth.ValidAfter)
	if err != nil {
		return PaymentPayload{}, x402err.InvalidInput("authorization validAfter: %v", err)
	}
	validBefore, err := parseTimestamp(auth.ValidBefore)
	if err != nil {
		return PaymentPayload{}, x402err.InvalidInput("authorization validBefore: %v", err)
	}
	if validAfter >= validBefore {
		return PaymentPayload{}, x402err.InvalidInput("authorization time window is empty: validAfter %d >= validBefore %d", validAfter, validBefore)
	}

	if err := validateHexBytes(auth.Nonce, 32); err != nil {
		return PaymentPayload{}, x402err.InvalidInput("authorization nonce: %v", err)
	}
	if err := validateHexBytes(payload.Payload.Signature, 65); err != nil {
		return PaymentPayload{}, x402err.InvalidInput("payload signature: %v", err)
	}

	return payload, nil
}

// parseTimestamp parses a canonical unsigned base-10 Unix timestamp.
// Timestamps are bounded to int64 seconds; larger values cannot be real
// clock readings.
func parseTimestamp(s string) (int64, error) {
	if !isCanonicalUint(s) {
		return 0, x402err.InvalidInput("not a canonical unsigned integer: %q", s)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, x402err.InvalidInput("out of range: %q", s)
	}
	return v, nil
}

// isCanonicalUint reports whether s is an unsigned base-10 integer in
// canonical form: digits only, no sign, no fraction, no leading zeros.
func isCanonicalUint(s string) bool {
	if s == "" {
		return false
	}
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// validateHexBytes checks that s is a 0x-prefixed hex string encoding
// exactly size bytes.
func validateHexBytes(s string, size int) error {
	trimmed := strings.TrimPrefix(s, "0x")
	if trimmed == s {
		return x402err.InvalidInput("missing 0x prefix")
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return x402err.InvalidInput("not valid hex: %v", err)
	}
	if len(raw) != size {
		return x402err.InvalidInput("must be exactly %d bytes, got %d", size, len(raw))
	}
	return nil
}
