package repository

import (
	"context"

	constant "github.com/SeakMengs/EventHub/internal/constant"
	"github.com/SeakMengs/EventHub/internal/model"
	"gorm.io/gorm"
)

type ParticipantRepository struct {
	*baseRepository
}

func (pr ParticipantRepository) GetById(ctx context.Context, tx *gorm.DB, eventId string, participantId string) (*model.Participant, error) {
	pr.logger.Debugf("Get participant %s of event %s", participantId, eventId)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var participant model.Participant
	if err := db.WithContext(ctx).Model(&model.Participant{}).
		Where("id = ? AND event_id = ?", participantId, eventId).First(&participant).Error; err != nil {
		return &participant, err
	}

	return &participant, nil
}

// Participants whose attendance was verified, ordered by registration
func (pr ParticipantRepository) GetVerifiedByEventId(ctx context.Context, tx *gorm.DB, eventId string) ([]model.Participant, error) {
	pr.logger.Debugf("Get verified participants by event id: %s", eventId)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var participants []model.Participant
	if err := db.WithContext(ctx).Model(&model.Participant{}).
		Where("event_id = ? AND attendance_verified_at IS NOT NULL", eventId).
		Order("created_at asc").Find(&participants).Error; err != nil {
		return participants, err
	}

	return participants, nil
}
