package blockchain

import (
	"fmt"
	"sync"
)

// ClientFactory manages blockchain clients, one cached instance per
// endpoint URL.
type ClientFactory struct {
	evmClients    map[string]*EVMClient
	solanaClients map[string]*SolanaClient
	tronClients   map[string]*TronClient
	moneroClients map[string]*MoneroClient
	tonClients    map[string]*TonClient
	utxoClients   map[string]*UTXOClient
	moClients     map[string]*MOClient
	mu            sync.RWMutex
}

// NewClientFactory creates a new client factory
func NewClientFactory() *ClientFactory {
	return &ClientFactory{
		evmClients:    make(map[string]*EVMClient),
		solanaClients: make(map[string]*SolanaClient),
		tronClients:   make(map[string]*TronClient),
		moneroClients: make(map[string]*MoneroClient),
		tonClients:    make(map[string]*TonClient),
		utxoClients:   make(map[string]*UTXOClient),
		moClients:     make(map[string]*MOClient),
	}
}

// GetEVMClient returns an EVM client for the given RPC URL.
// If a client already exists for the URL, it returns the cached client.
func (f *ClientFactory) GetEVMClient(rpcURL string) (*EVMClient, error) {
	f.mu.RLock()
	client, ok := f.evmClients[rpcURL]
	f.mu.RUnlock()
	if ok {
		return client, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double check
	if client, ok := f.evmClients[rpcURL]; ok {
		return client, nil
	}

	newClient, err := NewEVMClient(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create EVM client: %w", err)
	}

	f.evmClients[rpcURL] = newClient
	return newClient, nil
}

// GetSolanaClient returns a cached or new Solana client
func (f *ClientFactory) GetSolanaClient(rpcURL string) (*SolanaClient, error) {
	f.mu.RLock()
	client, ok := f.solanaClients[rpcURL]
	f.mu.RUnlock()
	if ok {
		return client, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.solanaClients[rpcURL]; ok {
		return client, nil
	}

	newClient, err := NewSolanaClient(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Solana client: %w", err)
	}
	f.solanaClients[rpcURL] = newClient
	return newClient, nil
}

// GetMoneroClient returns a cached or new Monero wallet RPC client
func (f *ClientFactory) GetMoneroClient(rpcURL string) (*MoneroClient, error) {
	f.mu.RLock()
	client, ok := f.moneroClients[rpcURL]
	f.mu.RUnlock()
	if ok {
		return client, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.moneroClients[rpcURL]; ok {
		return client, nil
	}

	newClient, err := NewMoneroClient(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Monero client: %w", err)
	}
	f.moneroClients[rpcURL] = newClient
	return newClient, nil
}

// GetMOClient returns a cached or new MO chain client
func (f *ClientFactory) GetMOClient(rpcURL string) (*MOClient, error) {
	f.mu.RLock()
	client, ok := f.moClients[rpcURL]
	f.mu.RUnlock()
	if ok {
		return client, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.moClients[rpcURL]; ok {
		return client, nil
	}

	newClient, err := NewMOClient(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create MO client: %w", err)
	}
	f.moClients[rpcURL] = newClient
	return newClient, nil
}

// GetTronClient returns a cached or new Tron client.
// Construction never fails for REST clients, so no error is returned.
func (f *ClientFactory) GetTronClient(baseURL string) *TronClient {
	f.mu.RLock()
	client, ok := f.tronClients[baseURL]
	f.mu.RUnlock()
	if ok {
		return client
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.tronClients[baseURL]; ok {
		return client
	}
	newClient := NewTronClient(baseURL)
	f.tronClients[baseURL] = newClient
	return newClient
}

// GetTonClient returns a cached or new TON client
func (f *ClientFactory) GetTonClient(baseURL string) *TonClient {
	f.mu.RLock()
	client, ok := f.tonClients[baseURL]
	f.mu.RUnlock()
	if ok {
		return client
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.tonClients[baseURL]; ok {
		return client
	}
	newClient := NewTonClient(baseURL)
	f.tonClients[baseURL] = newClient
	return newClient
}

// GetUTXOClient returns a cached or new UTXO explorer client
func (f *ClientFactory) GetUTXOClient(baseURL string) *UTXOClient {
	f.mu.RLock()
	client, ok := f.utxoClients[baseURL]
	f.mu.RUnlock()
	if ok {
		return client
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.utxoClients[baseURL]; ok {
		return client
	}
	newClient := NewUTXOClient(baseURL)
	f.utxoClients[baseURL] = newClient
	return newClient
}

// RegisterEVMClient injects/overrides the cached client for a specific
// rpcURL. Useful for deterministic unit tests.
func (f *ClientFactory) RegisterEVMClient(rpcURL string, client *EVMClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evmClients[rpcURL] = client
}
