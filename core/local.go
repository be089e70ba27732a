package core

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/paygate-labs/x402-verify-go/types"
)

// transferWithAuthorizationTypes is the EIP-712 type set for EIP-3009
// transferWithAuthorization messages.
var transferWithAuthorizationTypes = apitypes.Types{
	"EIP712Domain": []apitypes.Type{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"TransferWithAuthorization": []apitypes.Type{
		{Name: "from", Type: "address"},
		{Name: "to", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "validAfter", Type: "uint256"},
		{Name: "validBefore", Type: "uint256"},
		{Name: "nonce", Type: "bytes32"},
	},
}

// AuthorizationDigest computes the EIP-712 signing digest of the
// authorization under the domain declared by the requirements: the
// asset contract is the verifying contract and the chain ID comes from
// the requirements' network. A payment signed for a different asset or
// chain therefore recovers to the wrong address.
func AuthorizationDigest(auth types.Authorization, requirements types.PaymentRequirements) ([]byte, error) {
	info, ok := requirements.Network.Info()
	if !ok {
		return nil, fmt.Errorf("no chain parameters for network %q", requirements.Network)
	}

	value, ok := new(big.Int).SetString(auth.Value, 10)
	if !ok {
		return nil, fmt.Errorf("authorization value %q is not an integer", auth.Value)
	}
	validAfter, ok := new(big.Int).SetString(auth.ValidAfter, 10)
	if !ok {
		return nil, fmt.Errorf("authorization validAfter %q is not an integer", auth.ValidAfter)
	}
	validBefore, ok := new(big.Int).SetString(auth.ValidBefore, 10)
	if !ok {
		return nil, fmt.Errorf("authorization validBefore %q is not an integer", auth.ValidBefore)
	}

	nonceBytes, err := hex.DecodeString(strings.TrimPrefix(auth.Nonce, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %v", err)
	}
	if len(nonceBytes) != 32 {
		return nil, fmt.Errorf("nonce must be exactly 32 bytes, got %d", len(nonceBytes))
	}
	var nonce [32]byte
	copy(nonce[:], nonceBytes)

	hexChainID := math.HexOrDecimal256(*big.NewInt(info.ChainID))

	typedData := apitypes.TypedData{
		Types:       transferWithAuthorizationTypes,
		PrimaryType: "TransferWithAuthorization",
		Domain: apitypes.TypedDataDomain{
			Name:              requirements.Extra.Name,
			Version:           requirements.Extra.Version,
			ChainId:           &hexChainID,
			VerifyingContract: requirements.Asset,
		},
		Message: apitypes.TypedDataMessage{
			"from":        auth.From,
			"to":          auth.To,
			"value":       value,
			"validAfter":  validAfter,
			"validBefore": validBefore,
			"nonce":       nonce,
		},
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to hash domain: %v", err)
	}
	messageHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to hash message: %v", err)
	}

	rawData := append(append([]byte("\x19\x01"), domainSeparator...), messageHash...)
	return crypto.Keccak256(rawData), nil
}

// recoverPayer recovers the signer address of sigHash from a 65-byte
// hex signature. A failed recovery is reported as ok=false rather than
// an error: a garbled signature is the client's fault, not ours.
func recoverPayer(sigHash []byte, signatureHex string) (common.Address, bool) {
	raw, err := hex.DecodeString(strings.TrimPrefix(signatureHex, "0x"))
	if err != nil || len(raw) != 65 {
		return common.Address{}, false
	}

	// Normalize the V value (27/28 → 0/1).
	signature := make([]byte, 65)
	copy(signature, raw)
	if signature[64] == 27 || signature[64] == 28 {
		signature[64] -= 27
	}

	pubkey, err := crypto.Ecrecover(sigHash, signature)
	if err != nil {
		return common.Address{}, false
	}
	recovered, err := crypto.UnmarshalPubkey(pubkey)
	if err != nil {
		return common.Address{}, false
	}
	return crypto.PubkeyToAddress(*recovered), true
}

// balanceOfABI is the ERC-20 balanceOf fragment used by the funds probe.
var balanceOfABI = `[{
	"type": "function",
	"name": "balanceOf",
	"inputs": [
		{"name": "account", "type": "address"}
	],
	"outputs": [
		{"name": "", "type": "uint256"}
	],
	"constant": true
}]`

// assetBalance reads the ERC-20 balance of account on the asset contract
// through the given RPC endpoint.
func assetBalance(ctx context.Context, rpcURL string, asset, account common.Address) (*big.Int, error) {
	parsed, err := abi.JSON(strings.NewReader(balanceOfABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse balanceOf ABI: %v", err)
	}
	data, err := parsed.Pack("balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf call data: %v", err)
	}

	client, err := NewEthClient(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC client: %v", err)
	}

	result, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &asset,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get token balance: %v", err)
	}
	if len(result) != 32 {
		return nil, fmt.Errorf("failed to get token balance: result is not 32 bytes")
	}
	return new(big.Int).SetBytes(result), nil
}
