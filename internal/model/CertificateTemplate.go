package model

import (
	"github.com/SeakMengs/EventHub/pkg/eventcert"
)

type CertificateTemplate struct {
	BaseModel
	Name         string                    `gorm:"type:varchar(100);not null" json:"name" form:"name" binding:"required"`
	Fields       []eventcert.TemplateField `gorm:"type:jsonb;serializer:json;not null" json:"fields"`
	CanvasWidth  float64                   `gorm:"type:double precision;not null;default:800" json:"canvasWidth"`
	CanvasHeight float64                   `gorm:"type:double precision;not null;default:600" json:"canvasHeight"`

	OrganizerID string `gorm:"type:text;not null;index" json:"organizerId"`

	BackgroundFileID *string `gorm:"type:text" json:"backgroundFileId"`
	BackgroundFile   *File   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"backgroundFile,omitempty"`
}

func (ct CertificateTemplate) TableName() string {
	return "certificate_templates"
}

// ToEventcert converts the row to the composer's template. Background bytes are not loaded.
func (ct CertificateTemplate) ToEventcert() eventcert.CertificateTemplate {
	tpl := eventcert.NewTemplate(ct.Name)
	if ct.Fields != nil {
		tpl.Fields = append(tpl.Fields, ct.Fields...)
	}
	tpl.CanvasSize = eventcert.Size{Width: ct.CanvasWidth, Height: ct.CanvasHeight}
	tpl.CanvasSize = tpl.Canvas()

	if ct.BackgroundFileID != nil && *ct.BackgroundFileID != "" {
		tpl.Background = &eventcert.Background{Ref: *ct.BackgroundFileID}
		if ct.BackgroundFile != nil {
			tpl.Background.ContentType = ct.BackgroundFile.ContentType
			tpl.Background.Filename = ct.BackgroundFile.ToBaseFilename()
		}
	}

	return tpl
}

// ApplyEventcert copies the serialized composer state onto the row. The background file
// relation is left for the caller since it needs a stored file.
func (ct *CertificateTemplate) ApplyEventcert(tpl eventcert.CertificateTemplate) {
	ct.Name = tpl.Name
	ct.Fields = tpl.Fields
	if ct.Fields == nil {
		ct.Fields = []eventcert.TemplateField{}
	}
	canvas := tpl.Canvas()
	ct.CanvasWidth = canvas.Width
	ct.CanvasHeight = canvas.Height

	if tpl.Background == nil {
		ct.BackgroundFileID = nil
		ct.BackgroundFile = nil
	} else if tpl.Background.Ref != "" {
		ref := tpl.Background.Ref
		ct.BackgroundFileID = &ref
	}
}
