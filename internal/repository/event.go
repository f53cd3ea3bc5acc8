package repository

import (
	"context"

	"github.com/SeakMengs/EventHub/internal/auth"
	constant "github.com/SeakMengs/EventHub/internal/constant"
	"github.com/SeakMengs/EventHub/internal/model"
	"gorm.io/gorm"
)

type EventRepository struct {
	*baseRepository
}

func (er EventRepository) GetById(ctx context.Context, tx *gorm.DB, eventId string) (*model.Event, error) {
	er.logger.Debugf("Get event by id: %s", eventId)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var event model.Event
	if err := db.WithContext(ctx).Model(&model.Event{}).Where("id = ?", eventId).
		Preload("CertificateTemplate.BackgroundFile").First(&event).Error; err != nil {
		return &event, err
	}

	return &event, nil
}

// Admins manage every event; organizers only their own.
func (er EventRepository) GetRoleOfEvent(ctx context.Context, tx *gorm.DB, eventId string, authUser *auth.JWTPayload) (constant.EventRole, *model.Event, error) {
	er.logger.Debugf("Get role of event with eventId: %s and userID: %s \n", eventId, authUser.ID)

	event, err := er.GetById(ctx, tx, eventId)
	if err != nil {
		return constant.EventRoleNone, nil, err
	}

	switch {
	case authUser.Role == "admin":
		return constant.EventRoleAdmin, event, nil
	case event.OrganizerID == authUser.ID:
		return constant.EventRoleOrganizer, event, nil
	default:
		return constant.EventRoleNone, event, nil
	}
}

func (er EventRepository) SetCertificateTemplate(ctx context.Context, tx *gorm.DB, eventId string, templateId string) error {
	er.logger.Debugf("Set certificate template %s for event %s", templateId, eventId)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	res := db.WithContext(ctx).Model(&model.Event{}).Where("id = ?", eventId).Update("certificate_template_id", templateId)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
