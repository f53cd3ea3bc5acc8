package issuer

import (
	"context"
	"errors"
	"fmt"

	"github.com/SeakMengs/EventHub/internal/model"
	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"gorm.io/gorm"
)

// GenerateOne renders and stores the certificate of one participant. A certificate that was
// already generated is returned as is.
func (i *Issuer) GenerateOne(ctx context.Context, eventId, participantId string) (ItemResult, error) {
	event, err := i.stores.Events.GetById(ctx, nil, eventId)
	if err != nil {
		return ItemResult{ParticipantID: participantId}, i.notFound(err)
	}

	participant, err := i.stores.Participants.GetById(ctx, nil, eventId, participantId)
	if err != nil {
		return ItemResult{ParticipantID: participantId}, i.notFound(err)
	}
	if !participant.ToEventcert().AttendanceVerified() {
		return ItemResult{ParticipantID: participantId}, fmt.Errorf("participant %s: %w", participantId, eventcert.ErrAttendanceNotVerified)
	}

	certificate, err := i.stores.Certificates.GetOrCreate(ctx, nil, eventId, participantId)
	if err != nil {
		return ItemResult{ParticipantID: participantId}, err
	}
	if certificate.Status.Issued() {
		res := resultOf(participantId, certificate)
		res.Skipped = true
		return res, nil
	}

	t, err := i.loadTemplate(ctx, event)
	if err != nil {
		return resultOf(participantId, certificate), err
	}

	doc, err := i.renderer.Render(ctx, i.input(t, participant, event, certificate), i.options(t))
	if err != nil {
		return resultOf(participantId, certificate), err
	}

	if err := i.store(ctx, certificate, doc); err != nil {
		return resultOf(participantId, certificate), err
	}

	return resultOf(participantId, certificate), nil
}

// GenerateAll produces certificates for every verified participant of the event whose record is
// still pending. One failure never stops the others.
func (i *Issuer) GenerateAll(ctx context.Context, eventId string) (BatchReport, error) {
	report := BatchReport{EventID: eventId, Items: []ItemResult{}}

	event, err := i.stores.Events.GetById(ctx, nil, eventId)
	if err != nil {
		return report, i.notFound(err)
	}

	participants, err := i.stores.Participants.GetVerifiedByEventId(ctx, nil, eventId)
	if err != nil {
		return report, err
	}

	type pendingItem struct {
		participant *model.Participant
		certificate *model.Certificate
	}
	var pending []pendingItem

	for idx := range participants {
		p := &participants[idx]
		certificate, err := i.stores.Certificates.GetOrCreate(ctx, nil, eventId, p.ID)
		if err != nil {
			report.add(ItemResult{ParticipantID: p.ID, Err: err})
			continue
		}
		if certificate.Status != eventcert.StatusPending {
			res := resultOf(p.ID, certificate)
			res.Skipped = true
			report.add(res)
			continue
		}
		pending = append(pending, pendingItem{participant: p, certificate: certificate})
	}

	if len(pending) == 0 {
		i.logRun(ctx, eventId, report)
		return report, nil
	}

	t, err := i.loadTemplate(ctx, event)
	if err != nil {
		for _, item := range pending {
			res := resultOf(item.participant.ID, item.certificate)
			res.Err = err
			report.add(res)
		}
		i.logRun(ctx, eventId, report)
		return report, nil
	}

	inputs := make([]eventcert.RenderInput, len(pending))
	for idx, item := range pending {
		inputs[idx] = i.input(t, item.participant, event, item.certificate)
	}

	// each document is stored by the worker that rendered it
	results := i.renderer.RenderEach(ctx, inputs, i.options(t), func(ctx context.Context, res eventcert.BatchResult) error {
		if !res.OK() {
			return nil
		}
		return i.store(ctx, pending[res.Index].certificate, res.Document)
	})

	for _, res := range results {
		item := pending[res.Index]
		out := resultOf(item.participant.ID, item.certificate)
		out.Err = res.Err
		report.add(out)
	}

	i.logRun(ctx, eventId, report)
	return report, nil
}

func (i *Issuer) logRun(ctx context.Context, eventId string, report BatchReport) {
	i.logger.Infof("Generated certificates for event %s: %d succeeded, %d failed, %d skipped", eventId, report.Succeeded, report.Failed, report.Skipped)

	if i.stores.EventLogs == nil {
		return
	}
	_, err := i.stores.EventLogs.Create(ctx, nil, &model.EventLog{
		Role:        "system",
		Action:      "certificate:generate",
		Description: fmt.Sprintf("%d succeeded, %d failed, %d skipped", report.Succeeded, report.Failed, report.Skipped),
		Timestamp:   i.now(),
		EventID:     eventId,
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		i.logger.Errorf("Failed to write event log for event %s: %v", eventId, err)
	}
}
