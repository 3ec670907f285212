package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ContractType represents a token's addressing scheme
type ContractType string

const (
	// ContractTypePermit tokens deposit to a per-user generated address
	ContractTypePermit ContractType = "PERMIT"
	// ContractTypeNoPermit tokens deposit to a shared address supplied by the caller
	ContractTypeNoPermit ContractType = "NO_PERMIT"
	// ContractTypeNative is the chain's native asset
	ContractTypeNative ContractType = "NATIVE"
)

// Token describes one (currency, chain) pairing available for deposits
type Token struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	Currency      string       `json:"currency"`
	Chain         string       `json:"chain"`
	Network       string       `json:"network"`
	ContractType  ContractType `json:"contractType"`
	Contract      null.String  `json:"contract,omitempty"`
	Decimals      int          `json:"decimals"`
	Confirmations int          `json:"confirmations"` // required before crediting
	Status        bool         `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
}
