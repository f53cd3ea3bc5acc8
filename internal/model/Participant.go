package model

import (
	"time"

	"github.com/SeakMengs/EventHub/pkg/eventcert"
)

// Participant registrations and attendance verification are owned by the registration flow.
// Certificates only read them.
type Participant struct {
	BaseModel
	Name                 string     `gorm:"type:varchar(150);not null" json:"name" form:"name" binding:"required"`
	Email                string     `gorm:"type:text;not null" json:"email" form:"email" binding:"required,email"`
	RegistrationNumber   string     `gorm:"type:text" json:"registrationNumber" form:"registrationNumber"`
	AttendanceVerifiedAt *time.Time `gorm:"type:timestamptz" json:"attendanceVerifiedAt"`

	EventID string `gorm:"type:text;not null;index" json:"eventId" form:"eventId"`
	Event   Event  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (p Participant) TableName() string {
	return "participants"
}

func (p Participant) ToEventcert() eventcert.Participant {
	return eventcert.Participant{
		ID:                   p.ID,
		Name:                 p.Name,
		Email:                p.Email,
		RegistrationNumber:   p.RegistrationNumber,
		AttendanceVerifiedAt: p.AttendanceVerifiedAt,
	}
}
