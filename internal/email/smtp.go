package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/vagadeeshwar/household-services-sub000/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTPSender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, toEmail, name, role string) error {
	content, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{
			Title:   "Welcome",
			Heading: "Welcome aboard",
		},
		Name: name,
		Role: role,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectWelcome, content)
}

func (s *SMTPSender) SendVerificationApprovedEmail(ctx context.Context, toEmail, name string) error {
	content, err := renderEmailTemplate("request_update.html", requestUpdateEmailData{
		baseEmailData: baseEmailData{
			Title:   "Profile approved",
			Heading: "You are verified",
			Body:    "An administrator approved your professional profile. You can now accept service requests.",
		},
		Name: name,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectVerificationApproved, content)
}

func (s *SMTPSender) SendRequestAssignedEmail(ctx context.Context, toEmail, customerName, serviceName, scheduledAt string) error {
	content, err := renderEmailTemplate("request_update.html", requestUpdateEmailData{
		baseEmailData: baseEmailData{
			Title:   "Request accepted",
			Heading: "A professional is on it",
			Body:    "A verified professional accepted your service request.",
		},
		Name:        customerName,
		ServiceName: serviceName,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectRequestAssignedFmt, serviceName), content)
}

func (s *SMTPSender) SendRequestCancelledEmail(ctx context.Context, toEmail, professionalName, scheduledAt string) error {
	content, err := renderEmailTemplate("request_update.html", requestUpdateEmailData{
		baseEmailData: baseEmailData{
			Title:   "Booking cancelled",
			Heading: "A booking was cancelled",
			Body:    "The customer cancelled a request that was on your calendar; the window is free again.",
		},
		Name:        professionalName,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectRequestCancelled, content)
}

func (s *SMTPSender) SendRequestCompletedEmail(ctx context.Context, toEmail, customerName, serviceName string) error {
	content, err := renderEmailTemplate("request_update.html", requestUpdateEmailData{
		baseEmailData: baseEmailData{
			Title:   "Work complete",
			Heading: "Your request is complete",
			Body:    "The professional marked the work as done. Please close the request and leave a review.",
		},
		Name:        customerName,
		ServiceName: serviceName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectRequestCompletedFmt, serviceName), content)
}

func (s *SMTPSender) SendDailyReminderEmail(ctx context.Context, toEmail, professionalName string, pendingCount int) error {
	content, err := renderEmailTemplate("reminder.html", reminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Pending requests",
			Heading: "Requests are waiting",
		},
		Name:         professionalName,
		PendingCount: pendingCount,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectDailyReminder, content)
}

func (s *SMTPSender) SendExportReadyEmail(ctx context.Context, toEmail, name string, attachment Attachment) error {
	content, err := renderEmailTemplate("export_ready.html", exportReadyEmailData{
		baseEmailData: baseEmailData{
			Title:   "Export ready",
			Heading: "Your export is ready",
		},
		Name: name,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectExportReady, content, attachment)
}
