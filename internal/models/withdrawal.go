package models

import (
	"time"

	"github.com/google/uuid"
)

// Withdrawal is an affiliate's request to pay out accumulated commission.
type Withdrawal struct {
	BaseModel
	StoreID       uuid.UUID        `gorm:"type:uuid;index" json:"store_id"`
	RequestNumber string           `gorm:"uniqueIndex" json:"request_number"`
	RequesterName string           `json:"requester_name"`
	Phone         string           `json:"phone"`
	AmountSAR     float64          `json:"amount_sar"`
	Method        string           `json:"method"`
	IBAN          string           `json:"iban"`
	Status        WithdrawalStatus `json:"status"`
	AdminNote     string           `json:"admin_note"`
	ProcessedAt   *time.Time       `json:"processed_at"`
	ProcessedBy   *uuid.UUID       `gorm:"type:uuid" json:"processed_by"`
}
