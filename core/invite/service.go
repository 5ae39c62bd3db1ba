// Package invite sends registration invites to students through the email provider's dynamic template.
package invite

import (
	"context"
	"encoding/json"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
)

// MessageType is the queue message type of invite jobs.
const MessageType = "invite"

// Outcome of a Deliver call.
type Outcome string

const (
	Sent        Outcome = "sent"
	AlreadySent Outcome = "already_sent"
	InProgress  Outcome = "in_progress" // another worker holds the delivery lock
	Skipped     Outcome = "skipped"     // no email or no registration link
	Failed      Outcome = "failed"
)

var ErrMissingFields = errors.New("missing required fields")

type (
	// Invite is one registration invite.
	Invite struct {
		Email            string `json:"email"`
		Name             string `json:"name"`
		RegistrationLink string `json:"registrationLink"`
	}

	// Job is the side effect of a student creation, keyed by the student's id.
	Job struct {
		StudentID string `json:"studentId"`
		Invite
	}

	// ReceiptStore records deliveries so repeated jobs for the same key do not resend.
	ReceiptStore interface {
		// Lock acquires the delivery lock of key for ttl; false when someone else holds it.
		Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
		Unlock(ctx context.Context, key string) error
		// Sent reports whether a delivery receipt exists for key.
		Sent(ctx context.Context, key string) (bool, error)
		MarkSent(ctx context.Context, key string, at time.Time) error
	}

	Options struct {
		Sender     mail.Address
		TemplateID string
		LockTTL    time.Duration
	}

	Service struct {
		mailSvc  core.EmailService
		queue    core.Queue
		receipts ReceiptStore
		opts     Options
	}
)

func (inv *Invite) Clean() {
	inv.Email = core.CleanString(inv.Email, true /* lower */)
	inv.Name = core.CleanString(inv.Name)
	inv.RegistrationLink = core.CleanString(inv.RegistrationLink)
}

func (inv Invite) Complete() bool {
	return inv.Email != "" && inv.Name != "" && inv.RegistrationLink != ""
}

func NewService(mailSvc core.EmailService, queue core.Queue, receipts ReceiptStore, opts Options) *Service {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Minute
	}
	return &Service{
		mailSvc:  mailSvc,
		queue:    queue,
		receipts: receipts,
		opts:     opts,
	}
}

// Message builds the provider template message for inv.
func (svc *Service) Message(inv Invite) *core.EmailMessage {
	sender := svc.opts.Sender
	return &core.EmailMessage{
		From:         &sender,
		To:           []mail.Address{{Name: inv.Name, Address: inv.Email}},
		Subject:      "Complete your registration",
		TemplateID:   svc.opts.TemplateID,
		TemplateName: "invite",
		DynamicData: map[string]interface{}{
			"student_name":      inv.Name,
			"registration_link": inv.RegistrationLink,
		},
	}
}

// Send delivers inv right away. Missing fields fail with ErrMissingFields;
// provider failures are reported as core.ErrEmailDelivery.
func (svc *Service) Send(ctx context.Context, inv Invite) error {
	inv.Clean()
	if !inv.Complete() {
		return ErrMissingFields
	}
	if err := svc.mailSvc.Send(ctx, svc.Message(inv)); err != nil {
		return errors.Wrap(core.ErrEmailDelivery, err.Error())
	}
	return nil
}

// Enqueue publishes the invite job of a newly created student.
// Students without an email or a registration link are not invited (returns false).
func (svc *Service) Enqueue(ctx context.Context, job Job) (bool, error) {
	job.Clean()
	if job.StudentID == "" || job.Email == "" || job.RegistrationLink == "" {
		return false, nil
	}
	body, err := json.Marshal(job)
	if err != nil {
		return false, errors.Wrap(err, "encoding invite job")
	}
	if err = svc.queue.Publish(ctx, core.Message{Type: MessageType, Body: body}); err != nil {
		return false, errors.Wrap(err, "publishing invite job")
	}
	return true, nil
}

// DecodeJob decodes the body of an invite queue message.
func DecodeJob(msg core.Message) (Job, error) {
	var job Job
	if msg.Type != MessageType {
		return job, errors.Errorf("unexpected message type %q", msg.Type)
	}
	err := json.Unmarshal(msg.Body, &job)
	return job, errors.Wrap(err, "decoding invite job")
}

func receiptKey(job Job) string {
	return "student:" + job.StudentID
}

// Deliver sends the invite of job at most once per student, however many times the job is delivered.
// A failed send releases the lock so a later delivery of the same job may retry.
// A send whose receipt could not be recorded keeps the lock until it expires.
func (svc *Service) Deliver(ctx context.Context, job Job) (Outcome, error) {
	job.Clean()
	if job.StudentID == "" || job.Email == "" || job.RegistrationLink == "" {
		return Skipped, nil
	}
	key := receiptKey(job)

	sent, err := svc.receipts.Sent(ctx, key)
	if err != nil {
		return Failed, errors.Wrap(err, "checking invite receipt")
	}
	if sent {
		return AlreadySent, nil
	}

	locked, err := svc.receipts.Lock(ctx, key, svc.opts.LockTTL)
	if err != nil {
		return Failed, errors.Wrap(err, "locking invite")
	}
	if !locked {
		return InProgress, nil
	}

	// the previous holder may have finished in between
	if sent, err = svc.receipts.Sent(ctx, key); err != nil || sent {
		_ = svc.receipts.Unlock(ctx, key)
		if err != nil {
			return Failed, errors.Wrap(err, "checking invite receipt")
		}
		return AlreadySent, nil
	}

	if err = svc.mailSvc.Send(ctx, svc.Message(job.Invite)); err != nil {
		_ = svc.receipts.Unlock(ctx, key)
		return Failed, errors.Wrap(core.ErrEmailDelivery, err.Error())
	}

	if err = svc.receipts.MarkSent(ctx, key, core.NowFunc().UTC()); err != nil {
		// the lock stays until its TTL so redeliveries in the meantime do not resend
		return Sent, errors.Wrap(err, "recording invite receipt")
	}
	_ = svc.receipts.Unlock(ctx, key)
	return Sent, nil
}
