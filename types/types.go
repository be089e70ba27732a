package types

// PaymentPayload is the client-submitted payment payload carried in the
// X-PAYMENT header (base64-encoded JSON).
type PaymentPayload struct {
	X402Version X402Version `json:"x402Version"`
	Scheme      Scheme      `json:"scheme"`
	Network     Network     `json:"network"`
	Payload     ExactEVM    `json:"payload"`
}

// ExactEVM is the EVM payload of the payment payload: an EIP-3009
// transferWithAuthorization signature plus its message fields.
type ExactEVM struct {
	Signature     string        `json:"signature"`
	Authorization Authorization `json:"authorization"`
}

// Authorization is the signed authorization of the payload. Value,
// ValidAfter and ValidBefore are canonical base-10 unsigned integer
// strings; amounts are base units and never floats.
type Authorization struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"validAfter"`
	ValidBefore string `json:"validBefore"`
	Nonce       string `json:"nonce"`
}

// PaymentRequirements is the server-declared payment requirements.
//
// Field order is the canonical wire order; encoding/json emits struct
// fields in declaration order, so independent implementations marshal
// identical requirements to byte-identical JSON.
type PaymentRequirements struct {
	Scheme            Scheme  `json:"scheme"`
	Network           Network `json:"network"`
	MaxAmountRequired string  `json:"maxAmountRequired"`
	Resource          string  `json:"resource"`
	Description       string  `json:"description"`
	MimeType          string  `json:"mimeType"`
	PayTo             string  `json:"payTo"`
	MaxTimeoutSeconds int64   `json:"maxTimeoutSeconds"`
	Asset             string  `json:"asset"`
	Extra             Extra   `json:"extra"`
}

// Extra is the scheme-specific metadata of the payment requirements: the
// EIP-712 signing domain of the asset contract.
type Extra struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// VerifyRequest is the request body of the facilitator verify operation.
type VerifyRequest struct {
	X402Version         X402Version         `json:"x402Version"`
	PaymentPayload      PaymentPayload      `json:"paymentPayload"`
	PaymentRequirements PaymentRequirements `json:"paymentRequirements"`
}

// VerifyResponse is the result of a verification. Payer is set iff the
// payment is valid; InvalidReason is set iff it is not.
type VerifyResponse struct {
	IsValid       bool          `json:"isValid"`
	InvalidReason InvalidReason `json:"invalidReason,omitempty"`
	Payer         string        `json:"payer,omitempty"`
}

// PaymentRequiredResponse is the JSON body of a 402 challenge.
type PaymentRequiredResponse struct {
	X402Version X402Version           `json:"x402Version"`
	Error       string                `json:"error,omitempty"`
	Accepts     []PaymentRequirements `json:"accepts"`
}
