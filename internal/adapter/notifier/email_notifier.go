package notifier

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/wekeepgrowing/workshop-backend/internal/config"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/model"
)

const fromName = "Workshop"

// mailSender is satisfied by *gomail.Dialer
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier emails the service advisor when a job status changes
type EmailNotifier struct {
	sender mailSender
	from   string
	logger *zap.Logger
}

// NewEmailNotifier creates a new EmailNotifier. Without an SMTP host every
// notification is skipped.
func NewEmailNotifier(cfg config.EmailConfig, logger *zap.Logger) *EmailNotifier {
	n := &EmailNotifier{from: cfg.From, logger: logger}
	if cfg.Host != "" {
		n.sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return n
}

// Enabled reports whether an SMTP server is configured
func (n *EmailNotifier) Enabled() bool {
	return n.sender != nil
}

// NotifyStatusChange sends the status change mail to the job's service advisor
func (n *EmailNotifier) NotifyStatusChange(ctx context.Context, job *model.Job, from, to model.JobStatus, changedBy string) error {
	if !n.Enabled() {
		return nil
	}
	if strings.TrimSpace(job.ServiceAdvisorEmail) == "" {
		n.logger.Debug("no service advisor email, skipping notification",
			zap.String("job_number", job.JobNumber))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(n.from, fromName))
	m.SetHeader("To", job.ServiceAdvisorEmail)
	m.SetHeader("Subject", statusSubject(job, to))
	m.SetBody("text/plain", statusText(job, from, to, changedBy))
	m.AddAlternative("text/html", statusHTML(job, from, to, changedBy))

	if err := n.sender.DialAndSend(m); err != nil {
		n.logger.Error("failed to send status email",
			zap.String("job_number", job.JobNumber),
			zap.String("to", job.ServiceAdvisorEmail),
			zap.Error(err))
		return fmt.Errorf("failed to send status email: %w", err)
	}

	n.logger.Info("status email sent",
		zap.String("job_number", job.JobNumber),
		zap.String("status", string(to)))
	return nil
}

func statusSubject(job *model.Job, to model.JobStatus) string {
	if job.Registration != "" {
		return fmt.Sprintf("Job %s (%s): %s", job.JobNumber, job.Registration, to)
	}
	return fmt.Sprintf("Job %s: %s", job.JobNumber, to)
}

func statusText(job *model.Job, from, to model.JobStatus, changedBy string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job %s moved from %q to %q", job.JobNumber, from, to)
	if changedBy != "" {
		fmt.Fprintf(&b, " by %s", changedBy)
	}
	b.WriteString(".\n")
	if job.CustomerName != "" {
		fmt.Fprintf(&b, "Customer: %s\n", job.CustomerName)
	}
	if job.Registration != "" {
		fmt.Fprintf(&b, "Registration: %s\n", job.Registration)
	}
	return b.String()
}

func statusHTML(job *model.Job, from, to model.JobStatus, changedBy string) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family: sans-serif; color: #333333;">`)
	fmt.Fprintf(&b, `<p>Job <strong>%s</strong> moved from <em>%s</em> to <strong>%s</strong>`,
		html.EscapeString(job.JobNumber), html.EscapeString(string(from)), html.EscapeString(string(to)))
	if changedBy != "" {
		fmt.Fprintf(&b, ` by %s`, html.EscapeString(changedBy))
	}
	b.WriteString(`.</p>`)
	if job.CustomerName != "" || job.Registration != "" {
		b.WriteString(`<table style="border-collapse: collapse;">`)
		if job.CustomerName != "" {
			fmt.Fprintf(&b, `<tr><td style="padding: 2px 8px 2px 0;">Customer</td><td>%s</td></tr>`, html.EscapeString(job.CustomerName))
		}
		if job.Registration != "" {
			fmt.Fprintf(&b, `<tr><td style="padding: 2px 8px 2px 0;">Registration</td><td>%s</td></tr>`, html.EscapeString(job.Registration))
		}
		b.WriteString(`</table>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}
