package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Wallet struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_wallet_user_currency_type"`
	Type      string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_wallet_user_currency_type"` // FIAT, SPOT, ECO, FUTURES
	Currency  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_wallet_user_currency_type"`
	Balance   decimal.Decimal `gorm:"type:numeric(36,18);not null;default:0"`
	InOrder   decimal.Decimal `gorm:"type:numeric(36,18);not null;default:0"`
	Address   string          `gorm:"type:text"` // JSON: chain -> {address, network, memo}
	Status    bool            `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
