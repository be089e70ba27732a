package types

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/paygate-labs/x402-verify-go/x402err"
)

// DefaultDescription is used when no description is configured.
const DefaultDescription = "Payment required"

// DefaultMaxTimeoutSeconds bounds how long a client may take to settle.
const DefaultMaxTimeoutSeconds int64 = 60

// RequirementsConfig holds the caller-supplied inputs from which
// PaymentRequirements are built. Amount is a decimal string in whole asset
// units (e.g. "0.0001" USDC); it is converted to integer base units during
// Build and never handled as a float afterwards.
type RequirementsConfig struct {
	Amount            string
	PayTo             string
	Network           Network
	Resource          string
	Description       string
	MimeType          string
	MaxTimeoutSeconds int64
	Testnet           bool
}

// Build validates the config and constructs immutable payment
// requirements. There is no partially-valid result: any invalid field
// fails with x402err.KindInvalidInput before requirements exist.
//
// Network resolution: an explicit Network wins; otherwise the Testnet
// flag maps the default production network to its sandbox counterpart.
func (c RequirementsConfig) Build(requestPath string) (PaymentRequirements, error) {
	network := c.Network
	if network == "" {
		network = DefaultNetwork
		if c.Testnet {
			network, _ = DefaultNetwork.TestnetCounterpart()
		}
	}

	info, ok := network.Info()
	if !ok {
		return PaymentRequirements{}, x402err.InvalidInput("unsupported network: %q", network)
	}

	maxAmount, err := toBaseUnits(c.Amount, info.AssetDecimals)
	if err != nil {
		return PaymentRequirements{}, err
	}

	if !common.IsHexAddress(c.PayTo) {
		return PaymentRequirements{}, x402err.InvalidInput("payTo is not a valid address: %q", c.PayTo)
	}

	resource := c.Resource
	if resource == "" {
		resource = requestPath
	}
	if resource == "" {
		resource = "/"
	}

	description := c.Description
	if description == "" {
		description = DefaultDescription
	}

	mimeType := c.MimeType
	if mimeType == "" {
		mimeType = "application/json"
	}

	maxTimeout := c.MaxTimeoutSeconds
	if maxTimeout <= 0 {
		maxTimeout = DefaultMaxTimeoutSeconds
	}

	return PaymentRequirements{
		Scheme:            SchemeExact,
		Network:           network,
		MaxAmountRequired: maxAmount,
		Resource:          resource,
		Description:       description,
		MimeType:          mimeType,
		PayTo:             strings.ToLower(c.PayTo),
		MaxTimeoutSeconds: maxTimeout,
		Asset:             info.USDCAddress,
		Extra: Extra{
			Name:    info.USDCName,
			Version: info.USDCVersion,
		},
	}, nil
}

// toBaseUnits converts a non-negative decimal amount string into the
// integer base-unit string used everywhere past this boundary. The
// fractional part must fit the asset's declared precision; rounding here
// would silently change what the server charges.
func toBaseUnits(amount string, assetDecimals int32) (string, error) {
	if amount == "" {
		return "", x402err.InvalidInput("amount is empty")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", x402err.InvalidInput("amount %q is not a valid decimal: %v", amount, err)
	}
	if d.IsNegative() {
		return "", x402err.InvalidInput("amount %q is negative", amount)
	}
	shifted := d.Shift(assetDecimals)
	if !shifted.IsInteger() {
		return "", x402err.InvalidInput("amount %q has more than %d fractional digits", amount, assetDecimals)
	}
	return shifted.BigInt().String(), nil
}

// AmountInAssetUnits renders a base-unit amount back into whole asset
// units for display, e.g. "100" with 6 decimals becomes "0.0001".
func AmountInAssetUnits(baseUnits string, assetDecimals int32) (string, error) {
	d, err := decimal.NewFromString(baseUnits)
	if err != nil {
		return "", x402err.InvalidInput("amount %q is not a valid integer: %v", baseUnits, err)
	}
	return d.Shift(-assetDecimals).String(), nil
}
