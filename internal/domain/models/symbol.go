package models

// AssetClass tags a resolved symbol with the market it trades on.
type AssetClass string

const (
	AssetEquity AssetClass = "equity"
	AssetCrypto AssetClass = "crypto"
	AssetForex  AssetClass = "forex"
)

// ResolvedSymbol is the outcome of mapping raw user input to a provider symbol.
type ResolvedSymbol struct {
	Input          string     `json:"input"`
	ProviderSymbol string     `json:"providerSymbol"`
	AssetClass     AssetClass `json:"assetClass"`
}
