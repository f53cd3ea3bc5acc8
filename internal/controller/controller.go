package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	appcontext "github.com/SeakMengs/EventHub/internal/app_context"
	"github.com/SeakMengs/EventHub/internal/auth"
	"github.com/SeakMengs/EventHub/internal/constant"
	"github.com/SeakMengs/EventHub/internal/issuer"
	"github.com/SeakMengs/EventHub/internal/model"
	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	ErrEventIdRequired       = "event id is required"
	ErrTemplateIdRequired    = "template id is required"
	ErrCertificateIdRequired = "certificate id is required"
	ErrForbidden             = "you do not have permission to manage this event"
)

type eventRoleFinder interface {
	GetRoleOfEvent(ctx context.Context, tx *gorm.DB, eventId string, authUser *auth.JWTPayload) (constant.EventRole, *model.Event, error)
}

type certificateFinder interface {
	GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Certificate, error)
	GetByNumber(ctx context.Context, tx *gorm.DB, number string) (*model.Certificate, error)
}

// certificateIssuer is satisfied by *issuer.Issuer.
type certificateIssuer interface {
	GenerateOne(ctx context.Context, eventId, participantId string) (issuer.ItemResult, error)
	GenerateAll(ctx context.Context, eventId string) (issuer.BatchReport, error)
	Download(ctx context.Context, certificateId string) (*issuer.DownloadedDocument, error)
	DownloadAll(ctx context.Context, eventId string, w io.Writer) (int, error)
	Deliver(ctx context.Context, certificateId string) (eventcert.Record, error)
}

type baseController struct {
	app    *appcontext.Application
	events eventRoleFinder
}

type Controller struct {
	Index           *IndexController
	Template        *TemplateController
	TemplateBuilder *TemplateBuilderController
	Certificate     *CertificateController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app, events: app.Repository.Event}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)

	return &Controller{
		Index:           &IndexController{baseController: bc},
		Template:        &TemplateController{baseController: bc},
		TemplateBuilder: &TemplateBuilderController{baseController: bc},
		Certificate: &CertificateController{
			baseController: bc,
			certificates:   app.Repository.Certificate,
			issuer:         app.Issuer,
		},
	}
}

func (b *baseController) getAuthUser(ctx *gin.Context) (*auth.JWTPayload, error) {
	user, exists := ctx.Get(auth.ContextUserKey)
	if !exists {
		return nil, errors.New("user not found in context")
	}

	if payload, ok := user.(auth.JWTPayload); ok {
		return &payload, nil
	}

	jsonUser, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	var authUser *auth.JWTPayload
	err = json.Unmarshal(jsonUser, &authUser)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return authUser, nil
}

func (b *baseController) getEventRole(ctx *gin.Context, eventId string) (*auth.JWTPayload, constant.EventRole, *model.Event, error) {
	user, err := b.getAuthUser(ctx)
	if err != nil {
		return nil, constant.EventRoleNone, nil, fmt.Errorf("failed to get auth user: %w", err)
	}

	role, event, err := b.events.GetRoleOfEvent(ctx, nil, eventId, user)
	if err != nil {
		return nil, constant.EventRoleNone, nil, fmt.Errorf("failed to get event role: %w", err)
	}

	return user, role, event, nil
}

// Templates belong to the organizer who created them; admins manage all of them.
func (b *baseController) getTemplateRole(ctx *gin.Context, templateId string) (*auth.JWTPayload, constant.EventRole, *model.CertificateTemplate, error) {
	user, err := b.getAuthUser(ctx)
	if err != nil {
		return nil, constant.EventRoleNone, nil, fmt.Errorf("failed to get auth user: %w", err)
	}

	tpl, err := b.app.Repository.CertificateTemplate.GetById(ctx, nil, templateId)
	if err != nil {
		return nil, constant.EventRoleNone, nil, fmt.Errorf("failed to get template: %w", err)
	}

	role := util.ParseEventRole(user.Role)
	switch {
	case role == constant.EventRoleAdmin:
	case tpl.OrganizerID == user.ID:
		role = constant.EventRoleOrganizer
	default:
		role = constant.EventRoleNone
	}

	return user, role, tpl, nil
}

// requireEventManager responds and returns false unless the caller organizes the event or is an admin.
func (b *baseController) requireEventManager(ctx *gin.Context, eventId string) (*auth.JWTPayload, *model.Event, bool) {
	if eventId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Event id is required", util.GenerateErrorMessages(errors.New(ErrEventIdRequired), "eventId"), nil)
		return nil, nil, false
	}

	user, role, event, err := b.getEventRole(ctx, eventId)
	if err != nil {
		util.ResponseError(ctx, "Failed to get event", err)
		return nil, nil, false
	}

	if !util.HasRole([]constant.EventRole{role}, []constant.EventRole{constant.EventRoleOrganizer, constant.EventRoleAdmin}) {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrForbidden), "forbidden"), nil)
		return nil, nil, false
	}

	return user, event, true
}

func serveDocument(ctx *gin.Context, filename string, contentType string, data []byte) {
	ctx.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	ctx.Data(http.StatusOK, contentType, data)
}
