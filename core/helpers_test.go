package core

import (
	"crypto/ecdsa"
	"crypto/rand"
	"strconv"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/paygate-labs/x402-verify-go/types"
)

const testPayTo = "0x209693Bc6afc0C5328bA36FaF03C514EF312287C"

// testNow is the fixed verification instant used across engine tests.
var testNow = time.Unix(1740672100, 0)

// newTestEngine returns an engine pinned to testNow.
func newTestEngine() *Engine {
	return &Engine{Now: func() time.Time { return testNow }}
}

// newFixtures mints a signing key, requirements for 0.0001 USDC on
// base-sepolia, and a payload correctly signed by that key.
func newFixtures(t *testing.T) (types.PaymentPayload, types.PaymentRequirements, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	requirements, err := types.RequirementsConfig{
		Amount:  "0.0001",
		PayTo:   testPayTo,
		Testnet: true,
	}.Build("/premium")
	require.NoError(t, err)

	payload := types.PaymentPayload{
		X402Version: types.X402Version1,
		Scheme:      types.SchemeExact,
		Network:     types.NetworkBaseSepolia,
		Payload: types.ExactEVM{
			Authorization: types.Authorization{
				From:        crypto.PubkeyToAddress(key.PublicKey).Hex(),
				To:          testPayTo,
				Value:       "100",
				ValidAfter:  strconv.FormatInt(testNow.Add(-time.Minute).Unix(), 10),
				ValidBefore: strconv.FormatInt(testNow.Add(5*time.Minute).Unix(), 10),
				Nonce:       randomNonce(t),
			},
		},
	}
	signPayload(t, key, &payload, requirements)
	return payload, requirements, key
}

// signPayload recomputes the signature over the payload's current
// authorization under the requirements' signing domain.
func signPayload(t *testing.T, key *ecdsa.PrivateKey, payload *types.PaymentPayload, requirements types.PaymentRequirements) {
	t.Helper()

	digest, err := AuthorizationDigest(payload.Payload.Authorization, requirements)
	require.NoError(t, err)

	signature, err := crypto.Sign(digest, key)
	require.NoError(t, err)
	payload.Payload.Signature = hexutil.Encode(signature)
}

// randomNonce returns a fresh 32-byte hex nonce.
func randomNonce(t *testing.T) string {
	t.Helper()

	nonce := make([]byte, 32)
	_, err := rand.Read(nonce)
	require.NoError(t, err)
	return hexutil.Encode(nonce)
}
