package model

import "time"

type EventLog struct {
	BaseModel

	Role        string    `gorm:"type:text;not null;" json:"role" form:"role" binding:"required"`
	Action      string    `gorm:"type:text;not null;" json:"action" form:"action" binding:"required"`
	Description string    `gorm:"type:text;not null;" json:"description" form:"description" binding:"required"`
	Timestamp   time.Time `gorm:"type:timestamptz;not null;" json:"timestamp" form:"timestamp"`

	EventID string `gorm:"type:text;not null;index" json:"eventId" form:"eventId"`
	Event   Event  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (el EventLog) TableName() string {
	return "event_logs"
}
