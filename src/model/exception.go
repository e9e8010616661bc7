package model

import "time"

// Exception is an unexpected failure (panic, storage error) kept for later inspection.
type Exception struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Module string `gorm:"size:100;index" json:"module"` // e.g. "alert_controller"
	Method string `gorm:"size:100" json:"method"`       // e.g. "AcceptAlert"

	Message string `gorm:"type:text" json:"message"`
	Stack   string `gorm:"type:text" json:"stack"`

	Level string `gorm:"size:20;index" json:"level"` // warn | error | fatal

	// Extra context stored as JSON text
	Context string `gorm:"type:text" json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Exception) TableName() string {
	return "exceptions"
}
