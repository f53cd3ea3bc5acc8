package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/SeakMengs/EventHub/internal/constant"
	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type TemplateBuilderController struct {
	*baseController
}

type EventType string

const (
	EventFieldAdd         EventType = "field:add"
	EventFieldUpdate      EventType = "field:update"
	EventFieldRemove      EventType = "field:remove"
	EventFieldMove        EventType = "field:move"
	EventBackgroundUpdate EventType = "background:update"
	EventSettingsUpdate   EventType = "settings:update"
)

var eventPermissions = map[EventType]constant.TemplatePermission{
	EventFieldAdd:         constant.TemplateFieldAdd,
	EventFieldUpdate:      constant.TemplateFieldUpdate,
	EventFieldRemove:      constant.TemplateFieldRemove,
	EventFieldMove:        constant.TemplateFieldMove,
	EventBackgroundUpdate: constant.TemplateBackgroundUpdate,
	EventSettingsUpdate:   constant.TemplateSettingsUpdate,
}

type PositionState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p PositionState) toEventcert() eventcert.Position {
	return eventcert.Position{X: p.X, Y: p.Y}
}

type SizeState struct {
	Width  float64 `json:"width" binding:"gte=0"`
	Height float64 `json:"height" binding:"gte=0"`
}

type StyleState struct {
	FontSize   *float64 `json:"fontSize" binding:"omitempty,gt=0"`
	FontFamily *string  `json:"fontFamily" binding:"omitempty,strNotEmpty,cmax=100"`
	FontWeight *string  `json:"fontWeight" binding:"omitempty,oneof=normal bold lighter"`
	Color      *string  `json:"color" binding:"omitempty,hexcolor"`
	TextAlign  *string  `json:"textAlign" binding:"omitempty,oneof=left center right"`
}

// FieldState carries the optional members of a field; nil members are left untouched.
type FieldState struct {
	Content  *string        `json:"content" binding:"omitempty,cmax=500"`
	Position *PositionState `json:"position"`
	Size     *SizeState     `json:"size"`
	Style    *StyleState    `json:"style"`
}

func (s FieldState) toPatch() eventcert.FieldPatch {
	var patch eventcert.FieldPatch
	patch.Content = s.Content
	if s.Position != nil {
		p := s.Position.toEventcert()
		patch.Position = &p
	}
	if s.Size != nil {
		patch.Size = &eventcert.Size{Width: s.Size.Width, Height: s.Size.Height}
	}
	if st := s.Style; st != nil {
		patch.Style = &eventcert.StylePatch{
			FontSize:   st.FontSize,
			FontFamily: st.FontFamily,
		}
		if st.FontWeight != nil {
			w := eventcert.FontWeight(*st.FontWeight)
			patch.Style.FontWeight = &w
		}
		if st.Color != nil {
			c := *st.Color
			patch.Style.Color = &c
		}
		if st.TextAlign != nil {
			a := eventcert.TextAlign(*st.TextAlign)
			patch.Style.TextAlign = &a
		}
	}
	return patch
}

type FieldAdd struct {
	// client chosen id, so later events of the same request can refer to the field
	ID     string `json:"id" binding:"omitempty,strNotEmpty,cmax=64"`
	Kind   string `json:"kind" binding:"omitempty,oneof=text date image signature"`
	Preset string `json:"preset" binding:"omitempty,oneof=text participant_name event_name event_date certificate_number signature image"`
	FieldState
}

type FieldUpdate struct {
	ID string `json:"id" binding:"required,strNotEmpty"`
	FieldState
}

type FieldRemove struct {
	ID string `json:"id" binding:"required,strNotEmpty"`
}

// FieldMove replays a pointer drag: grab at From, pass through Path, release at To.
type FieldMove struct {
	ID   string          `json:"id" binding:"required,strNotEmpty"`
	From *PositionState  `json:"from" binding:"required"`
	Path []PositionState `json:"path"`
	To   *PositionState  `json:"to" binding:"required"`
}

type BackgroundUpdate struct {
	// drop the background instead of using the uploaded backgroundFile
	Remove bool `json:"remove"`
}

type SettingsUpdate struct {
	Name       *string `json:"name" binding:"omitempty,strNotEmpty,cmax=100"`
	CanvasSize *struct {
		Width  float64 `json:"width" binding:"gt=0"`
		Height float64 `json:"height" binding:"gt=0"`
	} `json:"canvasSize"`
}

// TemplateChangeEvent is a generic wrapper that holds the event type and raw payload.
type TemplateChangeEvent struct {
	Type EventType       `json:"type" binding:"required" form:"type"`
	Data json.RawMessage `json:"data" binding:"required" form:"data"`
}

// builderSession replays change events against a composer. The background upload is only
// validated here; storing it is left to the caller.
type builderSession struct {
	composer *eventcert.Composer
	upload   *eventcert.Upload
}

func decodeEvent(event TemplateChangeEvent, payload any) error {
	if err := json.Unmarshal(event.Data, payload); err != nil {
		return &eventcert.ValidationError{Field: "events", Message: fmt.Sprintf("invalid payload for %s", event.Type)}
	}
	return binding.Validator.ValidateStruct(payload)
}

func fieldNotFound(id string) error {
	return &eventcert.ValidationError{Field: "id", Message: fmt.Sprintf("field %q does not exist", id)}
}

func (s *builderSession) apply(events []TemplateChangeEvent) error {
	for idx, event := range events {
		if err := s.applyOne(event); err != nil {
			return fmt.Errorf("event #%d %s: %w", idx, event.Type, err)
		}
	}
	return nil
}

func (s *builderSession) applyOne(event TemplateChangeEvent) error {
	c := s.composer

	switch event.Type {
	case EventFieldAdd:
		var payload FieldAdd
		if err := decodeEvent(event, &payload); err != nil {
			return err
		}

		var field eventcert.TemplateField
		switch {
		case payload.Preset != "":
			field, _ = eventcert.NewPresetField(eventcert.Preset(payload.Preset))
		case payload.Kind != "":
			field = eventcert.NewField(eventcert.FieldKind(payload.Kind))
		default:
			return &eventcert.ValidationError{Field: "kind", Message: "kind or preset is required"}
		}
		if payload.ID != "" {
			field.ID = payload.ID
		}

		id, err := c.InsertField(field)
		if err != nil {
			return err
		}
		c.UpdateField(id, payload.toPatch())
	case EventFieldUpdate:
		var payload FieldUpdate
		if err := decodeEvent(event, &payload); err != nil {
			return err
		}
		if !c.UpdateField(payload.ID, payload.toPatch()) {
			return fieldNotFound(payload.ID)
		}
	case EventFieldRemove:
		var payload FieldRemove
		if err := decodeEvent(event, &payload); err != nil {
			return err
		}
		if !c.DeleteField(payload.ID) {
			return fieldNotFound(payload.ID)
		}
	case EventFieldMove:
		var payload FieldMove
		if err := decodeEvent(event, &payload); err != nil {
			return err
		}
		if !c.BeginDrag(payload.ID, payload.From.toEventcert()) {
			return fieldNotFound(payload.ID)
		}
		for _, p := range payload.Path {
			c.DragTo(p.toEventcert())
		}
		c.DragTo(payload.To.toEventcert())
		c.EndDrag()
	case EventBackgroundUpdate:
		var payload BackgroundUpdate
		if err := decodeEvent(event, &payload); err != nil {
			return err
		}
		if payload.Remove {
			c.RemoveBackground()
			return nil
		}
		if s.upload == nil {
			return &eventcert.ValidationError{Field: "backgroundFile", Message: "background file is required"}
		}
		if _, err := c.LoadBackground(*s.upload); err != nil {
			return err
		}
	case EventSettingsUpdate:
		var payload SettingsUpdate
		if err := decodeEvent(event, &payload); err != nil {
			return err
		}
		if payload.Name != nil {
			c.SetName(*payload.Name)
		}
		if cs := payload.CanvasSize; cs != nil {
			if err := c.SetCanvasSize(eventcert.Size{Width: cs.Width, Height: cs.Height}); err != nil {
				return err
			}
		}
	default:
		return &eventcert.ValidationError{Field: "events", Message: fmt.Sprintf("unknown event type %q", event.Type)}
	}

	return nil
}

func (tbc TemplateBuilderController) TemplateBuilder(ctx *gin.Context) {
	templateId := ctx.Param("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to patch template builder", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	_, role, row, err := tbc.getTemplateRole(ctx, templateId)
	if err != nil {
		util.ResponseError(ctx, "Failed to get template", err)
		return
	}

	// Get the events JSON from the form.
	eventsJSON := ctx.PostForm("events")
	if eventsJSON == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to patch template builder", util.GenerateErrorMessages(errors.New("events is required"), "events"), nil)
		return
	}

	var events []TemplateChangeEvent
	if err := json.Unmarshal([]byte(eventsJSON), &events); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to patch template builder", util.GenerateErrorMessages(errors.New("failed to parse events"), "events"), nil)
		return
	}

	permissions := make([]constant.TemplatePermission, 0, len(events))
	for _, event := range events {
		permission, ok := eventPermissions[event.Type]
		if !ok {
			util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to patch template builder", util.GenerateErrorMessages(fmt.Errorf("unknown event type %q", event.Type), "events"), nil)
			return
		}
		permissions = append(permissions, permission)
	}

	if !util.HasPermission([]constant.EventRole{role}, permissions) {
		util.ResponseFailed(ctx, http.StatusForbidden, "Failed to patch template builder", util.GenerateErrorMessages(errors.New("user does not have permission"), "permission"), nil)
		return
	}

	upload, err := readUpload(ctx, "backgroundFile")
	if err != nil {
		util.ResponseError(ctx, "Invalid background file", err)
		return
	}

	session := &builderSession{
		composer: eventcert.NewComposer(row.ToEventcert(), tbc.app.Measurer),
		upload:   upload,
	}
	if err := session.apply(events); err != nil {
		tbc.app.Logger.Debugf("Rejected template builder events for %s: %v", templateId, err)
		util.ResponseError(ctx, "Failed to patch template builder", err)
		return
	}

	tx := tbc.app.Repository.DB.Begin()

	// a background loaded by this request has bytes but no stored file yet
	if bg := session.composer.Background(); bg != nil && bg.Ref == "" {
		file, err := tbc.storeTemplateFile(ctx, tx, templateId, eventcert.Upload{Filename: bg.Filename, ContentType: bg.ContentType, Data: bg.Data})
		if err != nil {
			tx.Rollback()
			util.ResponseError(ctx, "Failed to upload background", err)
			return
		}
		session.composer.SetBackgroundRef(file.ID)
		row.BackgroundFile = file
	}

	tpl := session.composer.Serialize()
	if err := tpl.Validate(); err != nil {
		tx.Rollback()
		util.ResponseError(ctx, "Failed to patch template builder", err)
		return
	}

	row.ApplyEventcert(tpl)
	// TODO: delete the replaced background object once no generated certificate still needs it
	if _, err := tbc.app.Repository.CertificateTemplate.Update(ctx, tx, row); err != nil {
		tx.Rollback()
		util.ResponseError(ctx, "Failed to patch template builder", err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		util.ResponseError(ctx, "Failed to patch template builder", err)
		return
	}

	res, err := tbc.toTemplateResponse(ctx, row)
	if err != nil {
		util.ResponseError(ctx, "Failed to get background url", err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"template": res})
}
