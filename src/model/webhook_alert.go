package model

import "time"

// WebhookAlert is one inbound alert as it was delivered, kept for auditing.
type WebhookAlert struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Raw        string    `gorm:"type:text" json:"raw"`
	Ticker     string    `gorm:"size:50;index" json:"ticker"`
	Direction  string    `gorm:"size:10" json:"direction"`
	IsExit     bool      `json:"is_exit"`
	Price      string    `gorm:"size:50" json:"price"`
	ReceivedAt time.Time `gorm:"index" json:"received_at"`
}

func (WebhookAlert) TableName() string {
	return "webhook_alerts"
}
