package repository

import (
	"context"

	constant "github.com/SeakMengs/EventHub/internal/constant"
	"github.com/SeakMengs/EventHub/internal/model"
	"gorm.io/gorm"
)

type EventLogRepository struct {
	*baseRepository
}

func (elr EventLogRepository) Create(ctx context.Context, tx *gorm.DB, log *model.EventLog) (*model.EventLog, error) {
	elr.logger.Debugf("Create event log: %s %s", log.EventID, log.Action)

	db := elr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.EventLog{}).Create(log).Error; err != nil {
		return log, err
	}

	return log, nil
}

func (elr EventLogRepository) GetByEventId(ctx context.Context, tx *gorm.DB, eventId string) ([]*model.EventLog, error) {
	elr.logger.Debugf("Get event logs by event id: %s", eventId)

	db := elr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var logs []*model.EventLog
	if err := db.WithContext(ctx).Model(&model.EventLog{}).Where("event_id = ?", eventId).
		Order("timestamp asc").Find(&logs).Error; err != nil {
		return logs, err
	}

	return logs, nil
}
