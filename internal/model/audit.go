package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateDevis     = "CREATE_DEVIS"
	ActionCreateOrdre     = "CREATE_ORDRE"
	ActionCreateFacture   = "CREATE_FACTURE"
	ActionValidateDevis   = "VALIDATE_DEVIS"
	ActionValidateFacture = "VALIDATE_FACTURE"
	ActionConvertDevis    = "CONVERT_DEVIS"
	ActionConvertOrdre    = "CONVERT_ORDRE"
	ActionCreatePaiement  = "CREATE_PAIEMENT"
	ActionCancelPaiement  = "CANCEL_PAIEMENT"
	ActionCancelDocument  = "CANCEL_DOCUMENT"
	ActionRefundAvoir     = "REFUND_AVOIR"
	ActionUpdateConfig    = "UPDATE_CONFIG"
)

// AuditLog records who did what and when for financially relevant changes.
// Writes are side-channel: a failed audit insert never aborts the operation
// that triggered it.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // document numero or client name
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
