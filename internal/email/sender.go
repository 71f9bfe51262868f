// Package email delivers transactional mail for the platform. SMTPSender is
// the production implementation; NoopSender stands in when email is
// disabled.
package email

import (
	"context"

	"github.com/vagadeeshwar/household-services-sub000/platform/logger"
)

// Attachment is a file attached to an outgoing message.
type Attachment struct {
	FileName string
	Content  []byte
}

// Sender delivers the platform's transactional emails.
type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name, role string) error
	SendVerificationApprovedEmail(ctx context.Context, toEmail, name string) error
	SendRequestAssignedEmail(ctx context.Context, toEmail, customerName, serviceName, scheduledAt string) error
	SendRequestCancelledEmail(ctx context.Context, toEmail, professionalName, scheduledAt string) error
	SendRequestCompletedEmail(ctx context.Context, toEmail, customerName, serviceName string) error
	SendDailyReminderEmail(ctx context.Context, toEmail, professionalName string, pendingCount int) error
	SendExportReadyEmail(ctx context.Context, toEmail, name string, attachment Attachment) error
}

// NoopSender logs instead of sending. Used when EMAIL_ENABLED is false.
type NoopSender struct {
	log *logger.Logger
}

// NewNoopSender creates a no-op sender.
func NewNoopSender(log *logger.Logger) *NoopSender {
	return &NoopSender{log: log}
}

func (s *NoopSender) skip(kind, toEmail string) error {
	s.log.Info("email sending disabled, skipping", "kind", kind, "to", toEmail)
	return nil
}

func (s *NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, name, role string) error {
	return s.skip("welcome", toEmail)
}

func (s *NoopSender) SendVerificationApprovedEmail(ctx context.Context, toEmail, name string) error {
	return s.skip("verification_approved", toEmail)
}

func (s *NoopSender) SendRequestAssignedEmail(ctx context.Context, toEmail, customerName, serviceName, scheduledAt string) error {
	return s.skip("request_assigned", toEmail)
}

func (s *NoopSender) SendRequestCancelledEmail(ctx context.Context, toEmail, professionalName, scheduledAt string) error {
	return s.skip("request_cancelled", toEmail)
}

func (s *NoopSender) SendRequestCompletedEmail(ctx context.Context, toEmail, customerName, serviceName string) error {
	return s.skip("request_completed", toEmail)
}

func (s *NoopSender) SendDailyReminderEmail(ctx context.Context, toEmail, professionalName string, pendingCount int) error {
	return s.skip("daily_reminder", toEmail)
}

func (s *NoopSender) SendExportReadyEmail(ctx context.Context, toEmail, name string, attachment Attachment) error {
	return s.skip("export_ready", toEmail)
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = (*NoopSender)(nil)
)
