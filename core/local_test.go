package core

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationDigestDeterministic(t *testing.T) {
	payload, requirements, _ := newFixtures(t)

	first, err := AuthorizationDigest(payload.Payload.Authorization, requirements)
	require.NoError(t, err)
	second, err := AuthorizationDigest(payload.Payload.Authorization, requirements)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
}

func TestAuthorizationDigestBindsDomain(t *testing.T) {
	payload, requirements, _ := newFixtures(t)

	base, err := AuthorizationDigest(payload.Payload.Authorization, requirements)
	require.NoError(t, err)

	// A different asset contract yields a different signing domain, so a
	// signature minted for one asset cannot satisfy another.
	otherAsset := requirements
	otherAsset.Asset = "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"
	withOtherAsset, err := AuthorizationDigest(payload.Payload.Authorization, otherAsset)
	require.NoError(t, err)
	assert.NotEqual(t, base, withOtherAsset)

	// Same for the chain: base-sepolia and base disagree on chainId.
	otherChain := requirements
	otherChain.Network = "base"
	withOtherChain, err := AuthorizationDigest(payload.Payload.Authorization, otherChain)
	require.NoError(t, err)
	assert.NotEqual(t, base, withOtherChain)
}

func TestAuthorizationDigestRejectsBadFields(t *testing.T) {
	payload, requirements, _ := newFixtures(t)

	badValue := payload.Payload.Authorization
	badValue.Value = "not-a-number"
	_, err := AuthorizationDigest(badValue, requirements)
	assert.Error(t, err)

	badNonce := payload.Payload.Authorization
	badNonce.Nonce = "0xdeadbeef"
	_, err = AuthorizationDigest(badNonce, requirements)
	assert.Error(t, err)

	badNetwork := requirements
	badNetwork.Network = "dogecoin"
	_, err = AuthorizationDigest(payload.Payload.Authorization, badNetwork)
	assert.Error(t, err)
}

func TestRecoverPayer(t *testing.T) {
	payload, requirements, key := newFixtures(t)
	digest, err := AuthorizationDigest(payload.Payload.Authorization, requirements)
	require.NoError(t, err)

	payer, ok := recoverPayer(digest, payload.Payload.Signature)
	require.True(t, ok)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), payer)
}

func TestRecoverPayerLegacyV(t *testing.T) {
	payload, requirements, key := newFixtures(t)
	digest, err := AuthorizationDigest(payload.Payload.Authorization, requirements)
	require.NoError(t, err)

	// Wallets commonly emit V as 27/28 instead of 0/1.
	raw, err := hexutil.Decode(payload.Payload.Signature)
	require.NoError(t, err)
	raw[64] += 27

	payer, ok := recoverPayer(digest, hexutil.Encode(raw))
	require.True(t, ok)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), payer)
}

func TestRecoverPayerRejectsGarbage(t *testing.T) {
	payload, requirements, _ := newFixtures(t)
	digest, err := AuthorizationDigest(payload.Payload.Authorization, requirements)
	require.NoError(t, err)

	_, ok := recoverPayer(digest, "0xabcd")
	assert.False(t, ok, "short signature")

	_, ok = recoverPayer(digest, "not-hex")
	assert.False(t, ok, "non-hex signature")

	_, ok = recoverPayer(digest, "0x"+strings.Repeat("00", 65))
	assert.False(t, ok, "all-zero signature")
}
