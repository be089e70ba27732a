package types

// X402Version is the x402 protocol version enum.
type X402Version int

const (
	X402Version1 X402Version = 1
)

// Scheme is the amount-matching scheme enum.
type Scheme string

const (
	// SchemeExact requires the authorized value to equal the required amount.
	SchemeExact Scheme = "exact"
	// SchemeUpto allows any authorized value up to the required amount.
	SchemeUpto Scheme = "upto"
)

// IsValid reports whether the scheme is a recognized value.
func (s Scheme) IsValid() bool {
	switch s {
	case SchemeExact, SchemeUpto:
		return true
	}
	return false
}

// Network is the network enum.
type Network string

const (
	NetworkBase          Network = "base"
	NetworkBaseSepolia   Network = "base-sepolia"
	NetworkAvalanche     Network = "avalanche"
	NetworkAvalancheFuji Network = "avalanche-fuji"
)

// InvalidReason is the invalid reason enum returned with failed verifications.
type InvalidReason string

const (
	InvalidReasonSchemeMismatch     InvalidReason = "scheme_mismatch"
	InvalidReasonNetworkMismatch    InvalidReason = "network_mismatch"
	InvalidReasonInsufficientAmount InvalidReason = "insufficient_amount"
	InvalidReasonRecipientMismatch  InvalidReason = "recipient_mismatch"
	InvalidReasonExpired            InvalidReason = "expired"
	InvalidReasonNotYetValid        InvalidReason = "not_yet_valid"
	InvalidReasonNonceReused        InvalidReason = "nonce_reused"
	InvalidReasonBadSignature       InvalidReason = "bad_signature"
	InvalidReasonInsufficientFunds  InvalidReason = "insufficient_funds"
)
