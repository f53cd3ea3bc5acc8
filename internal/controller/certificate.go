package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SeakMengs/EventHub/internal/auth"
	"github.com/SeakMengs/EventHub/internal/constant"
	"github.com/SeakMengs/EventHub/internal/model"
	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	*baseController
	certificates certificateFinder
	issuer       certificateIssuer
}

type participantResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	RegistrationNumber string `json:"registrationNumber"`
}

type certificateResponse struct {
	ID                string              `json:"id"`
	CertificateNumber string              `json:"certificateNumber"`
	Status            eventcert.Status    `json:"status"`
	IssuedAt          *time.Time          `json:"issuedAt"`
	DownloadCount     int64               `json:"downloadCount"`
	Participant       participantResponse `json:"participant"`
}

func toCertificateResponse(c model.Certificate) certificateResponse {
	record := c.ToRecord()
	return certificateResponse{
		ID:                record.ID,
		CertificateNumber: record.CertificateNumber,
		Status:            record.Status,
		IssuedAt:          record.IssuedAt,
		DownloadCount:     record.DownloadCount,
		Participant: participantResponse{
			ID:                 c.Participant.ID,
			Name:               c.Participant.Name,
			Email:              c.Participant.Email,
			RegistrationNumber: c.Participant.RegistrationNumber,
		},
	}
}

func (cc CertificateController) GenerateCertificates(ctx *gin.Context) {
	type Request struct {
		// generate a single participant's certificate, otherwise every verified participant
		ParticipantID string `json:"participantId" form:"participantId" binding:"omitempty,strNotEmpty"`
	}
	var body Request

	eventId := ctx.Param("eventId")
	if _, _, ok := cc.requireEventManager(ctx, eventId); !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil && ctx.Request.ContentLength > 0 {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if body.ParticipantID != "" {
		result, err := cc.issuer.GenerateOne(ctx, eventId, body.ParticipantID)
		if err != nil {
			cc.app.Logger.Errorf("Failed to generate certificate of participant %s: %v", body.ParticipantID, err)
			util.ResponseError(ctx, "Failed to generate certificate", err)
			return
		}
		util.ResponseSuccess(ctx, gin.H{"certificate": result})
		return
	}

	report, err := cc.issuer.GenerateAll(ctx, eventId)
	if err != nil {
		cc.app.Logger.Errorf("Failed to generate certificates of event %s: %v", eventId, err)
		util.ResponseError(ctx, "Failed to generate certificates", err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"report": report})
}

// GenerateCertificatesAsync hands the batch to the certificate consumer.
func (cc CertificateController) GenerateCertificatesAsync(ctx *gin.Context) {
	type Request struct {
		ParticipantID string `json:"participantId" form:"participantId" binding:"omitempty,strNotEmpty"`
	}
	var body Request

	eventId := ctx.Param("eventId")
	user, _, ok := cc.requireEventManager(ctx, eventId)
	if !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil && ctx.Request.ContentLength > 0 {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if cc.app.Queue == nil {
		util.ResponseFailed(ctx, http.StatusServiceUnavailable, "Asynchronous generation is not available", util.GenerateErrorMessages(errors.New("queue is not configured"), "queue"), nil)
		return
	}

	if err := cc.app.Queue.EnqueueCertificateGenerate(ctx, eventId, body.ParticipantID, user.ID); err != nil {
		cc.app.Logger.Errorf("Failed to enqueue certificate generation of event %s: %v", eventId, err)
		util.ResponseError(ctx, "Failed to queue certificate generation", err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"queued": true})
}

func (cc CertificateController) GetCertificatesByEventId(ctx *gin.Context) {
	type EventLog struct {
		ID          string    `json:"id"`
		Role        string    `json:"role"`
		Action      string    `json:"action"`
		Description string    `json:"description"`
		Timestamp   time.Time `json:"timestamp"`
	}

	eventId := ctx.Param("eventId")
	_, event, ok := cc.requireEventManager(ctx, eventId)
	if !ok {
		return
	}

	pagination := util.ParsePagination(ctx)
	certificates, total, err := cc.app.Repository.Certificate.GetByEventId(ctx, nil, eventId, pagination.Page, pagination.PageSize)
	if err != nil {
		util.ResponseError(ctx, "Failed to get certificates", err)
		return
	}

	logs, err := cc.app.Repository.EventLog.GetByEventId(ctx, nil, eventId)
	if err != nil {
		util.ResponseError(ctx, "Failed to get event logs", err)
		return
	}

	certificateList := make([]certificateResponse, len(certificates))
	for i, c := range certificates {
		certificateList[i] = toCertificateResponse(c)
	}

	logList := make([]EventLog, len(logs))
	for i, l := range logs {
		logList[i] = EventLog{
			ID:          l.ID,
			Role:        l.Role,
			Action:      l.Action,
			Description: l.Description,
			Timestamp:   l.Timestamp,
		}
	}

	util.ResponseSuccess(ctx, gin.H{
		"event": gin.H{
			"id":    event.ID,
			"title": event.Title,
			"date":  event.Date,
		},
		"certificates": certificateList,
		"logs":         logList,
		"total":        total,
		"page":         pagination.Page,
		"pageSize":     pagination.PageSize,
		"totalPage":    util.CalculateTotalPage(total, pagination.PageSize),
	})
}

func (cc CertificateController) CertificatesToZipByEventId(ctx *gin.Context) {
	eventId := ctx.Param("eventId")
	if _, _, ok := cc.requireEventManager(ctx, eventId); !ok {
		return
	}

	var buf bytes.Buffer
	count, err := cc.issuer.DownloadAll(ctx, eventId, &buf)
	if err != nil {
		cc.app.Logger.Errorf("Failed to zip certificates of event %s: %v", eventId, err)
		util.ResponseError(ctx, "Failed to download certificates", err)
		return
	}
	cc.app.Logger.Debugf("Zipped %d certificates of event %s", count, eventId)

	serveDocument(ctx, fmt.Sprintf("certificates-%s.zip", eventId), "application/zip", buf.Bytes())
}

// canAccessCertificate lets the organizer, admins and the certificate owner through.
func canAccessCertificate(user *auth.JWTPayload, c *model.Certificate) bool {
	if util.ParseEventRole(user.Role) == constant.EventRoleAdmin {
		return true
	}
	if c.Event.OrganizerID != "" && c.Event.OrganizerID == user.ID {
		return true
	}
	return user.Email != "" && strings.EqualFold(user.Email, c.Participant.Email)
}

func (cc CertificateController) DownloadCertificate(ctx *gin.Context) {
	certificateId := ctx.Param("certificateId")
	if certificateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Certificate id is required", util.GenerateErrorMessages(errors.New(ErrCertificateIdRequired), "certificateId"), nil)
		return
	}

	user, err := cc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	certificate, err := cc.certificates.GetById(ctx, nil, certificateId)
	if err != nil {
		util.ResponseError(ctx, "Failed to get certificate", err)
		return
	}

	if !canAccessCertificate(user, certificate) {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("you do not have permission to download this certificate"), "forbidden"), nil)
		return
	}

	doc, err := cc.issuer.Download(ctx, certificateId)
	if err != nil {
		util.ResponseError(ctx, "Failed to download certificate", err)
		return
	}

	serveDocument(ctx, doc.Filename, doc.ContentType, doc.Data)
}

func (cc CertificateController) SendCertificate(ctx *gin.Context) {
	certificateId := ctx.Param("certificateId")
	if certificateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Certificate id is required", util.GenerateErrorMessages(errors.New(ErrCertificateIdRequired), "certificateId"), nil)
		return
	}

	certificate, err := cc.certificates.GetById(ctx, nil, certificateId)
	if err != nil {
		util.ResponseError(ctx, "Failed to get certificate", err)
		return
	}

	if _, _, ok := cc.requireEventManager(ctx, certificate.EventID); !ok {
		return
	}

	record, err := cc.issuer.Deliver(ctx, certificateId)
	if err != nil {
		cc.app.Logger.Errorf("Failed to send certificate %s: %v", certificateId, err)
		util.ResponseError(ctx, "Failed to send certificate", err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"certificate": record})
}

// VerifyCertificate is public, it backs the page the certificate QR code links to.
func (cc CertificateController) VerifyCertificate(ctx *gin.Context) {
	number := strings.TrimSpace(ctx.Param("certificateNumber"))
	if number == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Certificate number is required", util.GenerateErrorMessages(errors.New("certificate number is required"), "certificateNumber"), nil)
		return
	}

	certificate, err := cc.certificates.GetByNumber(ctx, nil, number)
	if err != nil {
		util.ResponseError(ctx, "Certificate not found", err)
		return
	}

	record := certificate.ToRecord()
	if !record.Status.Issued() {
		util.ResponseFailed(ctx, http.StatusNotFound, "Certificate not found", util.GenerateErrorMessages(eventcert.ErrNotFound, "certificateNumber"), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"certificate": gin.H{
			"certificateNumber": record.CertificateNumber,
			"issuedAt":          record.IssuedAt,
			"participantName":   certificate.Participant.Name,
			"eventTitle":        certificate.Event.Title,
			"eventDate":         certificate.Event.Date,
		},
	})
}
