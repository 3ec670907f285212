package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletType represents the kind of wallet
type WalletType string

const (
	WalletTypeFiat    WalletType = "FIAT"
	WalletTypeSpot    WalletType = "SPOT"
	WalletTypeEco     WalletType = "ECO"
	WalletTypeFutures WalletType = "FUTURES"
)

// DepositAddress is one generated deposit address for a chain
type DepositAddress struct {
	Address string `json:"address"`
	Network string `json:"network"`
	Memo    string `json:"memo,omitempty"` // destination tag for memo-based chains (TON)
}

// Wallet represents a user's wallet for one currency.
// Exactly one wallet exists per (user, currency, type).
type Wallet struct {
	ID        uuid.UUID                 `json:"id"`
	UserID    uuid.UUID                 `json:"userId"`
	Type      WalletType                `json:"type"`
	Currency  string                    `json:"currency"`
	Balance   decimal.Decimal           `json:"balance"`
	InOrder   decimal.Decimal           `json:"inOrder"`
	Addresses map[string]DepositAddress `json:"address"` // chain -> deposit address
	Status    bool                      `json:"status"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
	DeletedAt *time.Time                `json:"-"`
}

// AddressFor returns the generated deposit address for a chain
func (w *Wallet) AddressFor(chain string) (DepositAddress, bool) {
	addr, ok := w.Addresses[chain]
	return addr, ok
}

// MissingChains returns the tokens whose chain has no generated address yet
func (w *Wallet) MissingChains(tokens []*Token) []*Token {
	var missing []*Token
	for _, token := range tokens {
		if _, ok := w.Addresses[token.Chain]; !ok {
			missing = append(missing, token)
		}
	}
	return missing
}
