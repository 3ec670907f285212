package blockchain

import (
	"fmt"

	domainerrors "spot-deposits.backend/internal/domain/errors"

	"spot-deposits.backend/internal/config"
)

// Chain families. Dispatch is by explicit membership; an unknown chain
// is an error, never treated as EVM.
var evmChains = map[string]bool{
	"ETH":      true,
	"BSC":      true,
	"POLYGON":  true,
	"FTM":      true,
	"ARBITRUM": true,
	"OPTIMISM": true,
	"BASE":     true,
	"CELO":     true,
}

var utxoChains = map[string]bool{
	"BTC":  true,
	"LTC":  true,
	"DOGE": true,
	"DASH": true,
}

// IsEVMChain reports whether the chain belongs to the EVM family
func IsEVMChain(chain string) bool {
	return evmChains[chain]
}

// IsUTXOChain reports whether the chain belongs to the UTXO family
func IsUTXOChain(chain string) bool {
	return utxoChains[chain]
}

// Gateways resolves a chain name to its configured client. It wraps the
// factory so callers never deal with endpoint URLs.
type Gateways struct {
	cfg     config.ChainsConfig
	factory *ClientFactory
}

// NewGateways creates a gateway resolver backed by the given factory
func NewGateways(cfg config.ChainsConfig, factory *ClientFactory) *Gateways {
	return &Gateways{cfg: cfg, factory: factory}
}

// EVM returns the client for an EVM-family chain
func (g *Gateways) EVM(chain string) (*EVMClient, error) {
	rpcURL, ok := g.cfg.EVMRPC[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrUnsupportedChain, chain)
	}
	return g.factory.GetEVMClient(rpcURL)
}

// UTXO returns the explorer client for a UTXO-family chain
func (g *Gateways) UTXO(chain string) (*UTXOClient, error) {
	baseURL, ok := g.cfg.UTXOAPI[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrUnsupportedChain, chain)
	}
	return g.factory.GetUTXOClient(baseURL), nil
}

// Solana returns the Solana RPC client
func (g *Gateways) Solana() (*SolanaClient, error) {
	return g.factory.GetSolanaClient(g.cfg.SolanaRPC)
}

// Tron returns the Tron REST client
func (g *Gateways) Tron() *TronClient {
	return g.factory.GetTronClient(g.cfg.TronAPI)
}

// Monero returns the Monero wallet RPC client
func (g *Gateways) Monero() (*MoneroClient, error) {
	return g.factory.GetMoneroClient(g.cfg.MoneroRPC)
}

// Ton returns the TON REST client
func (g *Gateways) Ton() *TonClient {
	return g.factory.GetTonClient(g.cfg.TonAPI)
}

// MO returns the MO chain client
func (g *Gateways) MO() (*MOClient, error) {
	return g.factory.GetMOClient(g.cfg.MORPC)
}

// StatusFor returns the confirmation-status client for a chain.
// Unknown chains are rejected.
func (g *Gateways) StatusFor(chain string) (StatusClient, error) {
	switch {
	case IsEVMChain(chain):
		return g.EVM(chain)
	case IsUTXOChain(chain):
		return g.UTXO(chain)
	}

	switch chain {
	case "SOL":
		return g.Solana()
	case "TRON":
		return g.Tron(), nil
	case "XMR":
		return g.Monero()
	case "TON":
		return g.Ton(), nil
	case "MO":
		return g.MO()
	}
	return nil, fmt.Errorf("%w: %s", domainerrors.ErrUnsupportedChain, chain)
}
