package types

// NetworkInfo describes a supported network and its USDC asset.
type NetworkInfo struct {
	ChainID       int64
	Testnet       bool
	USDCAddress   string
	USDCName      string
	USDCVersion   string
	AssetDecimals int32
}

// networkTable maps each supported network to its chain parameters. USDC
// addresses are the canonical Circle deployments per network.
var networkTable = map[Network]NetworkInfo{
	NetworkBase: {
		ChainID:       8453,
		USDCAddress:   "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913",
		USDCName:      "USD Coin",
		USDCVersion:   "2",
		AssetDecimals: 6,
	},
	NetworkBaseSepolia: {
		ChainID:       84532,
		Testnet:       true,
		USDCAddress:   "0x036cbd53842c5426634e7929541ec2318f3dcf7e",
		USDCName:      "USDC",
		USDCVersion:   "2",
		AssetDecimals: 6,
	},
	NetworkAvalanche: {
		ChainID:       43114,
		USDCAddress:   "0xb97ef9ef8734c71904d8002f8b6bc66dd9c48a6e",
		USDCName:      "USD Coin",
		USDCVersion:   "2",
		AssetDecimals: 6,
	},
	NetworkAvalancheFuji: {
		ChainID:       43113,
		Testnet:       true,
		USDCAddress:   "0x5425890298aed601595a70ab815c96711a31bc65",
		USDCName:      "USD Coin",
		USDCVersion:   "2",
		AssetDecimals: 6,
	},
}

// testnetCounterpart maps each production network to its sandbox variant.
var testnetCounterpart = map[Network]Network{
	NetworkBase:      NetworkBaseSepolia,
	NetworkAvalanche: NetworkAvalancheFuji,
}

// DefaultNetwork is the production network used when none is configured.
const DefaultNetwork = NetworkBase

// IsSupported reports whether the network is a recognized value.
func (n Network) IsSupported() bool {
	_, ok := networkTable[n]
	return ok
}

// Info returns the chain parameters for the network.
func (n Network) Info() (NetworkInfo, bool) {
	info, ok := networkTable[n]
	return info, ok
}

// TestnetCounterpart returns the sandbox variant of a production network.
// Testnets map to themselves.
func (n Network) TestnetCounterpart() (Network, bool) {
	if info, ok := networkTable[n]; ok && info.Testnet {
		return n, true
	}
	counterpart, ok := testnetCounterpart[n]
	return counterpart, ok
}

// SupportedNetworks returns all recognized network identifiers.
func SupportedNetworks() []Network {
	networks := make([]Network, 0, len(networkTable))
	for n := range networkTable {
		networks = append(networks, n)
	}
	return networks
}
