package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Transaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	WalletID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_transaction_wallet_trx"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type          string          `gorm:"type:varchar(20);not null"` // DEPOSIT, WITHDRAWAL
	Status        string          `gorm:"type:varchar(20);not null;index"`
	Chain         string          `gorm:"type:varchar(50);not null"`
	Currency      string          `gorm:"type:varchar(50);not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(36,18);not null"`
	Fee           decimal.Decimal `gorm:"type:numeric(36,18);not null;default:0"`
	TrxID         string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_transaction_wallet_trx"`
	Confirmations int             `gorm:"not null;default:0"`
	Metadata      string          `gorm:"type:text"` // JSON: watched address and chain extras
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`

	Wallet Wallet `gorm:"foreignKey:WalletID"`
}
