package usecases

// Confirmation thresholds used when a token carries no explicit
// requirement of its own.
var defaultConfirmations = map[string]int{
	"ETH":      12,
	"BSC":      15,
	"POLYGON":  64,
	"FTM":      5,
	"ARBITRUM": 12,
	"OPTIMISM": 12,
	"BASE":     12,
	"CELO":     5,
	"BTC":      2,
	"LTC":      6,
	"DOGE":     10,
	"DASH":     6,
	"SOL":      1,
	"TRON":     19,
	"XMR":      10,
	"TON":      1,
	"MO":       12,
}

const fallbackConfirmations = 12

// RequiredConfirmations resolves the crediting threshold for a token.
// The reconciler shares it with the monitor family.
func RequiredConfirmations(chain string, tokenConfirmations int) int {
	if tokenConfirmations > 0 {
		return tokenConfirmations
	}
	if n, ok := defaultConfirmations[chain]; ok {
		return n
	}
	return fallbackConfirmations
}

// Solana transfer polling page size
const solanaSignatureBatch = 25
