package repository

import (
	"context"

	constant "github.com/SeakMengs/EventHub/internal/constant"
	"github.com/SeakMengs/EventHub/internal/model"
	"gorm.io/gorm"
)

type CertificateTemplateRepository struct {
	*baseRepository
}

func (ctr CertificateTemplateRepository) Create(ctx context.Context, tx *gorm.DB, tpl *model.CertificateTemplate) (*model.CertificateTemplate, error) {
	ctr.logger.Debugf("Create certificate template: %s", tpl.Name)

	db := ctr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.CertificateTemplate{}).Create(tpl).Error; err != nil {
		return tpl, err
	}

	return tpl, nil
}

func (ctr CertificateTemplateRepository) GetById(ctx context.Context, tx *gorm.DB, templateId string) (*model.CertificateTemplate, error) {
	ctr.logger.Debugf("Get certificate template by id: %s", templateId)

	db := ctr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var tpl model.CertificateTemplate
	if err := db.WithContext(ctx).Model(&model.CertificateTemplate{}).Where("id = ?", templateId).
		Preload("BackgroundFile").First(&tpl).Error; err != nil {
		return &tpl, err
	}

	return &tpl, nil
}

// Update overwrites the composer state of the template. Last write wins.
func (ctr CertificateTemplateRepository) Update(ctx context.Context, tx *gorm.DB, tpl *model.CertificateTemplate) (*model.CertificateTemplate, error) {
	ctr.logger.Debugf("Update certificate template: %s", tpl.ID)

	db := ctr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	res := db.WithContext(ctx).Model(&model.CertificateTemplate{}).Where("id = ?", tpl.ID).
		Select("name", "fields", "canvas_width", "canvas_height", "background_file_id").
		Updates(tpl)
	if res.Error != nil {
		return tpl, res.Error
	}
	if res.RowsAffected == 0 {
		return tpl, gorm.ErrRecordNotFound
	}

	return tpl, nil
}
