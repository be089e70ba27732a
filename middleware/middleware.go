// Package middleware adapts the verification core to net/http: it guards
// a handler behind an x402 paywall, verifying the X-PAYMENT header and
// answering 402 with the representation the client can consume.
package middleware

import (
	"net/http"
	"strings"

	"github.com/paygate-labs/x402-verify-go/core"
	"github.com/paygate-labs/x402-verify-go/template"
	"github.com/paygate-labs/x402-verify-go/types"
	"github.com/paygate-labs/x402-verify-go/x402err"
)

// PaymentHeader carries the encoded payment payload.
const PaymentHeader = "X-PAYMENT"

// FallbackPolicy decides what happens when the facilitator cannot be
// reached. A facilitator error is "unknown", not "rejected", so the host
// chooses between failing closed and failing open.
type FallbackPolicy string

const (
	// FallbackError answers 502 when the facilitator is unreachable.
	FallbackError FallbackPolicy = "error"
	// FallbackPass lets the request through as if the paywall were absent.
	FallbackPass FallbackPolicy = "pass"
)

// userErrInvalidPayment is the client-facing text for a malformed header.
const userErrInvalidPayment = "Invalid payment payload"

// userErrVerificationFailed is the client-facing text for a rejected
// payment.
const userErrVerificationFailed = "Payment verification failed"

// Config configures the paywall.
type Config struct {
	// Requirements describes the payment that unlocks the resource.
	Requirements types.RequirementsConfig

	// FacilitatorURL delegates verification when non-empty; otherwise
	// signatures are verified locally.
	FacilitatorURL string

	// Fallback picks the behavior on facilitator connectivity failure.
	// Defaults to FallbackError.
	Fallback FallbackPolicy

	// ExemptPaths lists path prefixes that skip payment.
	ExemptPaths []string

	// Engine overrides the verification engine, e.g. to inject a replay
	// cache. Nil uses a zero-value engine.
	Engine *core.Engine
}

// Handler wraps next behind the paywall.
func Handler(next http.Handler, cfg Config) http.Handler {
	engine := cfg.Engine
	if engine == nil {
		engine = &core.Engine{}
	}
	fallback := cfg.Fallback
	if fallback == "" {
		fallback = FallbackError
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isExempt(r.URL.Path, cfg.ExemptPaths) {
			next.ServeHTTP(w, r)
			return
		}

		requirements, err := cfg.Requirements.Build(r.URL.Path)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		encoded := r.Header.Get(PaymentHeader)
		if encoded == "" {
			send402(w, r, requirements, "")
			return
		}

		payload, err := types.DecodePayment(encoded)
		if err != nil {
			send402(w, r, requirements, userErrInvalidPayment)
			return
		}

		result, err := engine.Verify(r.Context(), payload, requirements, cfg.FacilitatorURL)
		if err != nil {
			if x402err.KindOf(err) == x402err.KindFacilitator && fallback == FallbackPass {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(x402err.Status(err)), x402err.Status(err))
			return
		}
		if !result.IsValid {
			send402(w, r, requirements, userErrVerificationFailed)
			return
		}

		w.Header().Set("X-Payment-Verified", "true")
		if result.Payer != "" {
			w.Header().Set("X-Payment-Payer", result.Payer)
		}
		next.ServeHTTP(w, r)
	})
}

// send402 answers with the paywall in the representation the client can
// consume: HTML for browsers, the JSON challenge for everything else.
func send402(w http.ResponseWriter, r *http.Request, requirements types.PaymentRequirements, errorMessage string) {
	accepts := []types.PaymentRequirements{requirements}

	if template.IsBrowserRequest(r.Header.Get("User-Agent"), r.Header.Get("Accept")) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(template.RenderHTML(accepts, errorMessage)))
		return
	}

	body, err := template.RenderJSON(accepts, errorMessage)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusPaymentRequired)
	_, _ = w.Write([]byte(body))
}

// isExempt reports whether path matches an exempt prefix.
func isExempt(path string, exempt []string) bool {
	for _, prefix := range exempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
