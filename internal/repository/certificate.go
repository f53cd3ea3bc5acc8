package repository

import (
	"context"
	"fmt"

	constant "github.com/SeakMengs/EventHub/internal/constant"
	"github.com/SeakMengs/EventHub/internal/model"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CertificateRepository struct {
	*baseRepository
}

// GetOrCreate returns the single record of (event, participant), creating a pending one when
// none exists. Concurrent callers resolve to the same row through the unique index.
func (cr CertificateRepository) GetOrCreate(ctx context.Context, tx *gorm.DB, eventId string, participantId string) (*model.Certificate, error) {
	cr.logger.Debugf("Get or create certificate of event %s participant %s", eventId, participantId)

	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var certificate model.Certificate
	err := cr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		fresh := model.Certificate{
			EventID:       eventId,
			ParticipantID: participantId,
			Status:        eventcert.StatusPending,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "participant_id"}},
			DoNothing: true,
		}).Omit(clause.Associations).Create(&fresh).Error; err != nil {
			return err
		}

		return tx.Model(&model.Certificate{}).
			Where("event_id = ? AND participant_id = ?", eventId, participantId).
			Preload("Participant").Preload("DocumentFile").
			First(&certificate).Error
	})
	if err != nil {
		return &certificate, err
	}

	return &certificate, nil
}

func (cr CertificateRepository) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Certificate, error) {
	cr.logger.Debugf("Get certificate by id: %s", id)

	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var certificate model.Certificate
	if err := db.WithContext(ctx).Model(&model.Certificate{}).Where("id = ?", id).
		Preload("Participant").Preload("DocumentFile").Preload("Event").
		First(&certificate).Error; err != nil {
		return &certificate, err
	}

	return &certificate, nil
}

func (cr CertificateRepository) GetByNumber(ctx context.Context, tx *gorm.DB, number string) (*model.Certificate, error) {
	cr.logger.Debugf("Get certificate by number: %s", number)

	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var certificate model.Certificate
	if err := db.WithContext(ctx).Model(&model.Certificate{}).Where("certificate_number = ?", number).
		Preload("Participant").Preload("Event").
		First(&certificate).Error; err != nil {
		return &certificate, err
	}

	return &certificate, nil
}

// Return certificates of an event and the total count
func (cr CertificateRepository) GetByEventId(ctx context.Context, tx *gorm.DB, eventId string, page, pageSize uint) ([]model.Certificate, int64, error) {
	cr.logger.Debugf("Get certificates by event id: %s", eventId)

	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var certificates []model.Certificate
	total := int64(0)

	if err := db.WithContext(ctx).Model(&model.Certificate{}).Where("event_id = ?", eventId).Count(&total).Error; err != nil {
		return certificates, total, err
	}

	query := db.WithContext(ctx).Model(&model.Certificate{}).Where("event_id = ?", eventId).
		Preload("Participant").Preload("DocumentFile").Order("created_at asc")

	if err := query.Offset(int((page - 1) * pageSize)).Limit(int(pageSize)).Find(&certificates).Error; err != nil {
		return certificates, total, err
	}

	return certificates, total, nil
}

// Certificates with a stored document
func (cr CertificateRepository) GetIssuedByEventId(ctx context.Context, tx *gorm.DB, eventId string) ([]model.Certificate, error) {
	cr.logger.Debugf("Get issued certificates by event id: %s", eventId)

	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var certificates []model.Certificate
	if err := db.WithContext(ctx).Model(&model.Certificate{}).
		Where("event_id = ? AND status IN ?", eventId, []eventcert.Status{eventcert.StatusGenerated, eventcert.StatusSent, eventcert.StatusDownloaded}).
		Preload("Participant").Preload("DocumentFile").Order("created_at asc").
		Find(&certificates).Error; err != nil {
		return certificates, err
	}

	return certificates, nil
}

// UpdateRecord persists the record fields only if the row is still in the expected status,
// so two workers cannot both move the same certificate.
func (cr CertificateRepository) UpdateRecord(ctx context.Context, tx *gorm.DB, certificate *model.Certificate, expected eventcert.Status) error {
	cr.logger.Debugf("Update certificate %s from %s to %s", certificate.ID, expected, certificate.Status)

	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	res := db.WithContext(ctx).Model(&model.Certificate{}).
		Where("id = ? AND status = ?", certificate.ID, expected).
		Select("certificate_number", "status", "issued_at", "download_count", "document_file_id").
		Updates(certificate)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: certificate %s is no longer %s", eventcert.ErrInvalidTransition, certificate.ID, expected)
	}

	return nil
}

// IncrementDownload counts a download atomically and promotes sent certificates to downloaded.
func (cr CertificateRepository) IncrementDownload(ctx context.Context, tx *gorm.DB, id string) (*model.Certificate, error) {
	cr.logger.Debugf("Increment download count of certificate: %s", id)

	db := cr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	res := db.WithContext(ctx).Model(&model.Certificate{}).
		Where("id = ? AND status IN ?", id, []eventcert.Status{eventcert.StatusGenerated, eventcert.StatusSent, eventcert.StatusDownloaded}).
		Updates(map[string]any{
			"download_count": gorm.Expr("download_count + 1"),
			"status":         gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", eventcert.StatusSent, eventcert.StatusDownloaded),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	certificate, err := cr.GetById(ctx, tx, id)
	if err != nil {
		return certificate, err
	}

	if res.RowsAffected == 0 {
		return certificate, fmt.Errorf("%w: cannot download a %s certificate", eventcert.ErrInvalidTransition, certificate.Status)
	}

	return certificate, nil
}
