package types

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paygate-labs/x402-verify-go/x402err"
)

const (
	testFrom  = "0x857b06519E91e3A54538791bDbb0E22373e36b66"
	testTo    = "0x209693Bc6afc0C5328bA36FaF03C514EF312287C"
	testNonce = "0xf3746613c2d920b5fdabc0856f2aeb2d4f88ee6037b8cc5d04a71a4462f13480"
)

var testSig = "0x" + strings.Repeat("ab", 64) + "1b"

// validPaymentJSON returns a well-formed payload document that mutate can
// edit before encoding.
func validPaymentJSON(t *testing.T, mutate func(map[string]any)) string {
	t.Helper()

	doc := map[string]any{
		"x402Version": 1,
		"scheme":      "exact",
		"network":     "base-sepolia",
		"payload": map[string]any{
			"signature": testSig,
			"authorization": map[string]any{
				"from":        testFrom,
				"to":          testTo,
				"value":       "10000",
				"validAfter":  "1740672089",
				"validBefore": "1740672154",
				"nonce":       testNonce,
			},
		},
	}
	if mutate != nil {
		mutate(doc)
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func authOf(doc map[string]any) map[string]any {
	return doc["payload"].(map[string]any)["authorization"].(map[string]any)
}

func TestDecodePayment(t *testing.T) {
	payload, err := DecodePayment(validPaymentJSON(t, nil))
	require.NoError(t, err)

	assert.Equal(t, X402Version1, payload.X402Version)
	assert.Equal(t, SchemeExact, payload.Scheme)
	assert.Equal(t, NetworkBaseSepolia, payload.Network)
	assert.Equal(t, testFrom, payload.Payload.Authorization.From)
	assert.Equal(t, testTo, payload.Payload.Authorization.To)
	assert.Equal(t, "10000", payload.Payload.Authorization.Value)
	assert.Equal(t, testNonce, payload.Payload.Authorization.Nonce)
	assert.Equal(t, testSig, payload.Payload.Signature)
}

func TestDecodePaymentUptoScheme(t *testing.T) {
	payload, err := DecodePayment(validPaymentJSON(t, func(doc map[string]any) {
		doc["scheme"] = "upto"
	}))
	require.NoError(t, err)
	assert.Equal(t, SchemeUpto, payload.Scheme)
}

func TestDecodePaymentRejects(t *testing.T) {
	tests := []struct {
		name    string
		encoded func(t *testing.T) string
	}{
		{"empty input", func(t *testing.T) string { return "" }},
		{"not base64", func(t *testing.T) string { return "%%%not-base64%%%" }},
		{"not json", func(t *testing.T) string {
			return base64.StdEncoding.EncodeToString([]byte("{truncated"))
		}},
		{"oversized input", func(t *testing.T) string {
			return strings.Repeat("A", MaxEncodedPayloadSize+1)
		}},
		{"wrong version", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) { doc["x402Version"] = 2 })
		}},
		{"unknown scheme", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) { doc["scheme"] = "subscription" })
		}},
		{"unknown network", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) { doc["network"] = "dogecoin" })
		}},
		{"value with leading zeros", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) { authOf(doc)["value"] = "010000" })
		}},
		{"negative value", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) { authOf(doc)["value"] = "-5" })
		}},
		{"fractional value", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) { authOf(doc)["value"] = "1.5" })
		}},
		{"numeric value instead of string", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) { authOf(doc)["value"] = 10000 })
		}},
		{"missing value", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) { delete(authOf(doc), "value") })
		}},
		{"empty time window", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) {
				authOf(doc)["validAfter"] = "1740672154"
				authOf(doc)["validBefore"] = "1740672154"
			})
		}},
		{"timestamp beyond int64", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) {
				authOf(doc)["validBefore"] = "99999999999999999999999999"
			})
		}},
		{"bad from address", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) { authOf(doc)["from"] = "0x1234" })
		}},
		{"bad to address", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) { authOf(doc)["to"] = "not-an-address" })
		}},
		{"short nonce", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) { authOf(doc)["nonce"] = "0xdeadbeef" })
		}},
		{"nonce without prefix", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) {
				authOf(doc)["nonce"] = strings.TrimPrefix(testNonce, "0x")
			})
		}},
		{"short signature", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) {
				doc["payload"].(map[string]any)["signature"] = "0xabcd"
			})
		}},
		{"signature with invalid hex", func(t *testing.T) string {
			return validPaymentJSON(t, func(doc map[string]any) {
				doc["payload"].(map[string]any)["signature"] = "0x" + strings.Repeat("zz", 65)
			})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayment(tt.encoded(t))
			require.Error(t, err)
			assert.Equal(t, x402err.KindInvalidInput, x402err.KindOf(err))
		})
	}
}

func TestIsCanonicalUint(t *testing.T) {
	assert.True(t, isCanonicalUint("0"))
	assert.True(t, isCanonicalUint("7"))
	assert.True(t, isCanonicalUint("10000"))
	assert.True(t, isCanonicalUint("115792089237316195423570985008687907853269984665640564039457584007913129639935"))

	assert.False(t, isCanonicalUint(""))
	assert.False(t, isCanonicalUint("00"))
	assert.False(t, isCanonicalUint("01"))
	assert.False(t, isCanonicalUint("+1"))
	assert.False(t, isCanonicalUint("-1"))
	assert.False(t, isCanonicalUint("1.0"))
	assert.False(t, isCanonicalUint("1e6"))
	assert.False(t, isCanonicalUint(" 1"))
}
