package symbols

import (
	"fmt"
	"regexp"
	"strings"

	"ChartPulse/internal/domain/models"
)

// Provider symbol suffixes. Every resolved symbol carries exactly one.
const (
	SuffixEquity = ".US"
	SuffixCrypto = "-USD.CC"
	SuffixForex  = ".FOREX"
)

type alias struct {
	base  string
	class models.AssetClass
}

// aliasTable maps common names and spellings (several languages) to a
// canonical base ticker. Alias membership takes priority over the bare
// equity fallback; a pre-suffixed input always wins over alias lookup.
var aliasTable = map[string]alias{
	// crypto
	"BTC":      {"BTC", models.AssetCrypto},
	"BITCOIN":  {"BTC", models.AssetCrypto},
	"XBT":      {"BTC", models.AssetCrypto},
	"ETH":      {"ETH", models.AssetCrypto},
	"ETHEREUM": {"ETH", models.AssetCrypto},
	"ETHER":    {"ETH", models.AssetCrypto},
	"SOL":      {"SOL", models.AssetCrypto},
	"SOLANA":   {"SOL", models.AssetCrypto},
	"XRP":      {"XRP", models.AssetCrypto},
	"RIPPLE":   {"XRP", models.AssetCrypto},
	"DOGE":     {"DOGE", models.AssetCrypto},
	"DOGECOIN": {"DOGE", models.AssetCrypto},

	// metals and fx, traded as forex pairs
	"GOLD":   {"XAUUSD", models.AssetForex},
	"ORO":    {"XAUUSD", models.AssetForex},
	"XAU":    {"XAUUSD", models.AssetForex},
	"SILVER": {"XAGUSD", models.AssetForex},
	"PLATA":  {"XAGUSD", models.AssetForex},
	"XAG":    {"XAGUSD", models.AssetForex},
	"EURO":   {"EURUSD", models.AssetForex},
	"EUR":    {"EURUSD", models.AssetForex},
	"POUND":  {"GBPUSD", models.AssetForex},
	"GBP":    {"GBPUSD", models.AssetForex},
	"YEN":    {"USDJPY", models.AssetForex},
	"JPY":    {"USDJPY", models.AssetForex},

	// common company names
	"APPLE":     {"AAPL", models.AssetEquity},
	"TESLA":     {"TSLA", models.AssetEquity},
	"MICROSOFT": {"MSFT", models.AssetEquity},
	"GOOGLE":    {"GOOGL", models.AssetEquity},
	"AMAZON":    {"AMZN", models.AssetEquity},
	"NVIDIA":    {"NVDA", models.AssetEquity},
	"META":      {"META", models.AssetEquity},
	"NETFLIX":   {"NFLX", models.AssetEquity},
}

// bareTicker matches a plain exchange ticker eligible for the equity default.
var bareTicker = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,9}$`)

// Resolver maps arbitrary user input to exactly one provider symbol plus an
// asset-class tag. Resolution is pure and idempotent: feeding a resolved
// symbol back in returns it unchanged, never double-suffixed.
type Resolver struct{}

func NewResolver() *Resolver { return &Resolver{} }

// Resolve maps input to a provider symbol. It never panics on empty or
// garbage input; failures come back as ErrInvalidSymbolInput or
// ErrUnsupportedSymbol.
func (r *Resolver) Resolve(input string) (models.ResolvedSymbol, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(input))
	if cleaned == "" {
		return models.ResolvedSymbol{}, fmt.Errorf("resolve %q: %w", input, models.ErrInvalidSymbolInput)
	}

	// Already suffixed: return as-is.
	if class, ok := classForSuffix(cleaned); ok {
		return models.ResolvedSymbol{Input: input, ProviderSymbol: cleaned, AssetClass: class}, nil
	}

	if a, ok := aliasTable[cleaned]; ok {
		return models.ResolvedSymbol{
			Input:          input,
			ProviderSymbol: a.base + suffixFor(a.class),
			AssetClass:     a.class,
		}, nil
	}

	if bareTicker.MatchString(cleaned) {
		return models.ResolvedSymbol{
			Input:          input,
			ProviderSymbol: cleaned + SuffixEquity,
			AssetClass:     models.AssetEquity,
		}, nil
	}

	return models.ResolvedSymbol{}, fmt.Errorf("resolve %q: %w", input, models.ErrUnsupportedSymbol)
}

func classForSuffix(sym string) (models.AssetClass, bool) {
	switch {
	case strings.HasSuffix(sym, SuffixCrypto):
		return models.AssetCrypto, true
	case strings.HasSuffix(sym, SuffixForex):
		return models.AssetForex, true
	case strings.HasSuffix(sym, SuffixEquity):
		return models.AssetEquity, true
	default:
		return "", false
	}
}

func suffixFor(class models.AssetClass) string {
	switch class {
	case models.AssetCrypto:
		return SuffixCrypto
	case models.AssetForex:
		return SuffixForex
	default:
		return SuffixEquity
	}
}
