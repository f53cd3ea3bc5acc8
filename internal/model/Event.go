package model

import (
	"time"

	"github.com/SeakMengs/EventHub/pkg/eventcert"
)

type Event struct {
	BaseModel
	Title     string    `gorm:"type:varchar(150);not null;" json:"title" form:"title" binding:"required"`
	Date      time.Time `gorm:"type:date;not null" json:"date" form:"date" binding:"required"`
	StartTime string    `gorm:"type:varchar(5)" json:"startTime" form:"startTime"`
	EndTime   string    `gorm:"type:varchar(5)" json:"endTime" form:"endTime"`
	Location  string    `gorm:"type:text" json:"location" form:"location"`

	OrganizerID string `gorm:"type:text;not null;index" json:"organizerId" form:"organizerId"`

	CertificateTemplateID *string              `gorm:"type:text" json:"certificateTemplateId" form:"certificateTemplateId"`
	CertificateTemplate   *CertificateTemplate `gorm:"constraint:OnDelete:SET NULL" json:"certificateTemplate,omitempty"`
}

func (e Event) TableName() string {
	return "events"
}

func (e Event) ToEventcert() eventcert.Event {
	return eventcert.Event{
		ID:        e.ID,
		Title:     e.Title,
		Date:      e.Date,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Location:  e.Location,
	}
}
