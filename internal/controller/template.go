package controller

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/SeakMengs/EventHub/internal/constant"
	"github.com/SeakMengs/EventHub/internal/model"
	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateController struct {
	*baseController
}

type backgroundResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	URL         string `json:"url"`
}

type templateResponse struct {
	ID         string                    `json:"id"`
	Name       string                    `json:"name"`
	Fields     []eventcert.TemplateField `json:"fields"`
	CanvasSize eventcert.Size            `json:"canvasSize"`
	Background *backgroundResponse       `json:"background,omitempty"`
}

func (b *baseController) toTemplateResponse(ctx *gin.Context, row *model.CertificateTemplate) (templateResponse, error) {
	tpl := row.ToEventcert()
	res := templateResponse{
		ID:         row.ID,
		Name:       tpl.Name,
		Fields:     tpl.Fields,
		CanvasSize: tpl.CanvasSize,
	}

	if row.BackgroundFile != nil {
		url, err := b.app.Storage.PresignedURL(ctx, row.BackgroundFile.BucketName, row.BackgroundFile.UniqueFileName)
		if err != nil {
			return res, err
		}
		res.Background = &backgroundResponse{
			ID:          row.BackgroundFile.ID,
			FileName:    row.BackgroundFile.ToBaseFilename(),
			ContentType: row.BackgroundFile.ContentType,
			URL:         url,
		}
	}

	return res, nil
}

// readUpload returns nil without an error when the form has no such file.
func readUpload(ctx *gin.Context, field string) (*eventcert.Upload, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	return uploadFromFileHeader(fh)
}

func uploadFromFileHeader(fh *multipart.FileHeader) (*eventcert.Upload, error) {
	if fh.Size > eventcert.MaxUploadSize {
		return nil, &eventcert.ValidationError{Field: "file", Message: "file must not exceed 5 MB"}
	}

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// one extra byte so oversize content is still detected when the header lies
	data, err := io.ReadAll(io.LimitReader(src, eventcert.MaxUploadSize+1))
	if err != nil {
		return nil, err
	}

	return &eventcert.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// storeTemplateFile uploads an already validated file under the template's directory.
func (b *baseController) storeTemplateFile(ctx *gin.Context, tx *gorm.DB, templateId string, up eventcert.Upload) (*model.File, error) {
	contentType := eventcert.DetectContentType(up)
	key := util.ToTemplateDirectoryPath(templateId, util.AddUniquePrefixToFileName(up.Filename))

	obj, err := b.app.Storage.Upload(ctx, key, up.Data, contentType)
	if err != nil {
		return nil, err
	}

	file, err := b.app.Repository.File.Create(ctx, tx, &model.File{
		FileName:       up.Filename,
		UniqueFileName: obj.Key,
		BucketName:     obj.Bucket,
		ContentType:    contentType,
		Size:           obj.Size,
	})
	if err != nil {
		if rmErr := b.app.Storage.Remove(ctx, obj.Bucket, obj.Key); rmErr != nil {
			b.app.Logger.Errorf("Failed to remove orphan object %s: %v", obj.Key, rmErr)
		}
		return nil, err
	}

	return file, nil
}

func (tc TemplateController) CreateTemplate(ctx *gin.Context) {
	type Request struct {
		Name         string  `json:"name" form:"name" binding:"required,strNotEmpty,cmax=100"`
		CanvasWidth  float64 `json:"canvasWidth" form:"canvasWidth" binding:"omitempty,gt=0"`
		CanvasHeight float64 `json:"canvasHeight" form:"canvasHeight" binding:"omitempty,gt=0"`
		// attach the new template to this event
		EventID string `json:"eventId" form:"eventId" binding:"omitempty,uuid"`
	}
	var body Request

	user, err := tc.getAuthUser(ctx)
	if err != nil {
		tc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if body.EventID != "" {
		if _, _, ok := tc.requireEventManager(ctx, body.EventID); !ok {
			return
		}
	}

	composer := eventcert.NewComposer(eventcert.NewTemplate(body.Name), tc.app.Measurer)
	if body.CanvasWidth > 0 || body.CanvasHeight > 0 {
		size := composer.Serialize().CanvasSize
		if body.CanvasWidth > 0 {
			size.Width = body.CanvasWidth
		}
		if body.CanvasHeight > 0 {
			size.Height = body.CanvasHeight
		}
		if err := composer.SetCanvasSize(size); err != nil {
			util.ResponseError(ctx, "Invalid request", err)
			return
		}
	}

	upload, err := readUpload(ctx, "backgroundFile")
	if err != nil {
		util.ResponseError(ctx, "Invalid background file", err)
		return
	}
	// templates may start from a PDF, the builder only swaps images
	if upload != nil {
		if err := eventcert.ValidateTemplateUpload(*upload); err != nil {
			util.ResponseError(ctx, "Invalid background file", err)
			return
		}
	}

	templateId := uuid.NewString()
	row := &model.CertificateTemplate{
		BaseModel:   model.BaseModel{ID: templateId},
		OrganizerID: user.ID,
	}

	tx := tc.app.Repository.DB.Begin()
	var file *model.File
	if upload != nil {
		if file, err = tc.storeTemplateFile(ctx, tx, templateId, *upload); err != nil {
			tx.Rollback()
			util.ResponseError(ctx, "Failed to upload background", err)
			return
		}
		composer.SetBackgroundRef(file.ID)
	}

	row.ApplyEventcert(composer.Serialize())
	if _, err := tc.app.Repository.CertificateTemplate.Create(ctx, tx, row); err != nil {
		tx.Rollback()
		util.ResponseError(ctx, "Failed to create template", err)
		return
	}

	if body.EventID != "" {
		if err := tc.app.Repository.Event.SetCertificateTemplate(ctx, tx, body.EventID, templateId); err != nil {
			tx.Rollback()
			util.ResponseError(ctx, "Failed to attach template to event", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		util.ResponseError(ctx, "Failed to create template", err)
		return
	}

	row.BackgroundFile = file
	res, err := tc.toTemplateResponse(ctx, row)
	if err != nil {
		util.ResponseError(ctx, "Failed to get background url", err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"template": res})
}

func (tc TemplateController) GetTemplateById(ctx *gin.Context) {
	templateId := ctx.Param("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	_, role, row, err := tc.getTemplateRole(ctx, templateId)
	if err != nil {
		util.ResponseError(ctx, "Failed to get template", err)
		return
	}

	if role == constant.EventRoleNone {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("you do not have permission to access this template"), "forbidden"), nil)
		return
	}

	res, err := tc.toTemplateResponse(ctx, row)
	if err != nil {
		util.ResponseError(ctx, "Failed to get background url", err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"role":     role,
		"template": res,
	})
}

// PreviewTemplate renders the template with sample participant data.
func (tc TemplateController) PreviewTemplate(ctx *gin.Context) {
	type Request struct {
		Format string `form:"format" binding:"omitempty,oneof=pdf png"`
	}
	var query Request

	templateId := ctx.Param("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	if err := ctx.ShouldBindQuery(&query); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	_, role, _, err := tc.getTemplateRole(ctx, templateId)
	if err != nil {
		util.ResponseError(ctx, "Failed to get template", err)
		return
	}
	if role == constant.EventRoleNone {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("you do not have permission to access this template"), "forbidden"), nil)
		return
	}

	doc, err := tc.app.Issuer.Preview(ctx, templateId, eventcert.OutputFormat(query.Format))
	if err != nil {
		tc.app.Logger.Errorf("Failed to preview template %s: %v", templateId, err)
		util.ResponseError(ctx, "Failed to preview template", err)
		return
	}

	serveDocument(ctx, "preview"+doc.Format.Extension(), doc.ContentType, doc.Data)
}
