package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Token struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name          string    `gorm:"type:varchar(100);not null"`
	Currency      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_token_currency_chain"`
	Chain         string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_token_currency_chain"`
	Network       string    `gorm:"type:varchar(50);not null;default:'mainnet'"`
	ContractType  string    `gorm:"type:varchar(20);not null;default:'PERMIT'"` // PERMIT, NO_PERMIT, NATIVE
	Contract      *string   `gorm:"type:varchar(255)"`
	Decimals      int       `gorm:"not null;default:18"`
	Confirmations int       `gorm:"not null;default:12"`
	Status        bool      `gorm:"default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}
