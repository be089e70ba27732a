// Package core implements the x402 verification engine: it checks a
// decoded payment payload against payment requirements, either locally by
// recovering the EIP-712 signature or by delegating to a remote
// facilitator.
package core

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/paygate-labs/x402-verify-go/facilitator"
	"github.com/paygate-labs/x402-verify-go/types"
	"github.com/paygate-labs/x402-verify-go/x402err"
)

// Engine verifies payments. The zero value is usable: no replay cache,
// no funds probe, facilitator clients built on demand.
type Engine struct {
	// Nonces enables replay rejection when non-nil. It is shared,
	// synchronized state injected by the host.
	Nonces *NonceCache

	// RPCURL enables the on-chain funds probe for locally verified
	// payments. Empty disables the probe.
	RPCURL string

	// Facilitators supplies pooled clients when verification is
	// delegated. Nil falls back to a package-level pool.
	Facilitators *facilitator.Pool

	// Now is the verification clock, overridable in tests.
	Now func() time.Time
}

// defaultPool backs engines that were not given a facilitator pool.
var defaultPool = facilitator.NewPool()

// Verify checks payload against requirements and returns the
// verification result.
//
// Checks run in a fixed order and short-circuit at the first failure:
// scheme, network, amount, recipient, time window, replay, authenticity.
// The ordering keeps the invalid reason deterministic and guarantees no
// network round trip happens when a cheap local check already
// disqualifies the payload.
//
// When facilitatorURL is non-empty the authenticity question (signature
// validity plus any on-chain state only the facilitator can see) is
// delegated; a facilitator "invalid" overrides everything local, and a
// connectivity failure is returned as an x402err.KindFacilitator error,
// never as a rejection. With no facilitator the signature is verified
// locally, plus an optional funds probe when RPCURL is set.
func (e *Engine) Verify(ctx context.Context, payload types.PaymentPayload, requirements types.PaymentRequirements, facilitatorURL string) (types.VerifyResponse, error) {
	// The decoder and builder only emit recognized enum values; seeing
	// anything else here is a defect in this module, not client input.
	if !payload.Scheme.IsValid() || !payload.Network.IsSupported() {
		return types.VerifyResponse{}, x402err.Internal("payload passed validation with unrecognized scheme %q or network %q", payload.Scheme, payload.Network)
	}
	if !requirements.Scheme.IsValid() || !requirements.Network.IsSupported() {
		return types.VerifyResponse{}, x402err.Internal("requirements passed validation with unrecognized scheme %q or network %q", requirements.Scheme, requirements.Network)
	}

	if payload.Scheme != requirements.Scheme {
		return invalid(types.InvalidReasonSchemeMismatch), nil
	}
	if payload.Network != requirements.Network {
		return invalid(types.InvalidReasonNetworkMismatch), nil
	}

	auth := payload.Payload.Authorization

	value, ok := new(big.Int).SetString(auth.Value, 10)
	if !ok {
		return types.VerifyResponse{}, x402err.Internal("authorization value %q passed validation but is not an integer", auth.Value)
	}
	maxAmount, ok := new(big.Int).SetString(requirements.MaxAmountRequired, 10)
	if !ok {
		return types.VerifyResponse{}, x402err.Internal("maxAmountRequired %q is not an integer", requirements.MaxAmountRequired)
	}
	switch payload.Scheme {
	case types.SchemeExact:
		if value.Cmp(maxAmount) != 0 {
			return invalid(types.InvalidReasonInsufficientAmount), nil
		}
	case types.SchemeUpto:
		if value.Cmp(maxAmount) > 0 {
			return invalid(types.InvalidReasonInsufficientAmount), nil
		}
	}

	if common.HexToAddress(auth.To) != common.HexToAddress(requirements.PayTo) {
		return invalid(types.InvalidReasonRecipientMismatch), nil
	}

	now := e.now()
	validAfter, err := strconv.ParseInt(auth.ValidAfter, 10, 64)
	if err != nil {
		return types.VerifyResponse{}, x402err.Internal("authorization validAfter %q passed validation but does not parse: %v", auth.ValidAfter, err)
	}
	validBefore, err := strconv.ParseInt(auth.ValidBefore, 10, 64)
	if err != nil {
		return types.VerifyResponse{}, x402err.Internal("authorization validBefore %q passed validation but does not parse: %v", auth.ValidBefore, err)
	}
	if now.Unix() < validAfter {
		return invalid(types.InvalidReasonNotYetValid), nil
	}
	if now.Unix() > validBefore {
		return invalid(types.InvalidReasonExpired), nil
	}

	if e.Nonces != nil {
		expiry := time.Unix(validBefore, 0)
		if !e.Nonces.Record(now, payload.Network, auth.Nonce, expiry) {
			return invalid(types.InvalidReasonNonceReused), nil
		}
	}

	if facilitatorURL != "" {
		return e.delegate(ctx, payload, requirements, facilitatorURL)
	}
	return e.verifyLocal(ctx, payload, requirements)
}

// delegate asks the facilitator for the authenticity verdict.
func (e *Engine) delegate(ctx context.Context, payload types.PaymentPayload, requirements types.PaymentRequirements, facilitatorURL string) (types.VerifyResponse, error) {
	pool := e.Facilitators
	if pool == nil {
		pool = defaultPool
	}
	client, err := pool.Get(facilitatorURL)
	if err != nil {
		return types.VerifyResponse{}, err
	}

	result, err := client.Verify(ctx, payload, requirements)
	if err != nil {
		return types.VerifyResponse{}, err
	}
	if result.IsValid && result.Payer == "" {
		result.Payer = common.HexToAddress(payload.Payload.Authorization.From).Hex()
	}
	return result, nil
}

// verifyLocal recomputes the signing digest and recovers the payer.
func (e *Engine) verifyLocal(ctx context.Context, payload types.PaymentPayload, requirements types.PaymentRequirements) (types.VerifyResponse, error) {
	auth := payload.Payload.Authorization

	digest, err := AuthorizationDigest(auth, requirements)
	if err != nil {
		return types.VerifyResponse{}, x402err.Internal("failed to compute authorization digest: %v", err)
	}

	payer, ok := recoverPayer(digest, payload.Payload.Signature)
	if !ok || payer != common.HexToAddress(auth.From) {
		return invalid(types.InvalidReasonBadSignature), nil
	}

	if e.RPCURL != "" {
		balance, err := assetBalance(ctx, e.RPCURL, common.HexToAddress(requirements.Asset), payer)
		if err != nil {
			return types.VerifyResponse{}, x402err.Facilitator(err, "funds probe failed")
		}
		value, _ := new(big.Int).SetString(auth.Value, 10)
		if balance.Cmp(value) < 0 {
			return invalid(types.InvalidReasonInsufficientFunds), nil
		}
	}

	return types.VerifyResponse{
		IsValid: true,
		Payer:   payer.Hex(),
	}, nil
}

// now returns the verification instant.
func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// invalid builds a rejection with the given reason.
func invalid(reason types.InvalidReason) types.VerifyResponse {
	return types.VerifyResponse{
		IsValid:       false,
		InvalidReason: reason,
	}
}
