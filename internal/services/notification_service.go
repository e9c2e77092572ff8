package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/parkrose/maintenance-service/internal/config"
	"github.com/parkrose/maintenance-service/internal/constants"
	"github.com/parkrose/maintenance-service/internal/models"
	"github.com/parkrose/maintenance-service/internal/utils"
)

const escalationEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Work Order Alert</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; background-color: #fcf8e3; color: #8a6d3b; margin: 0; padding: 20px; }
  .container { max-width: 600px; margin: auto; background: #fff; border: 1px solid #faebcc; border-radius: 8px; }
  .header { background-color: #fcf8e3; padding: 15px 20px; border-bottom: 1px solid #faebcc; }
  .header h1 { margin: 0; font-size: 20px; color: #8a6d3b; }
  .content { padding: 20px; }
  .content p { margin-top: 0; }
  ul { list-style: none; padding: 0; }
  li { padding: 8px; border-bottom: 1px solid #eee; }
  li:last-child { border-bottom: none; }
  strong { color: #333; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      <p>%s</p>
      <ul>
        <li><strong>Property:</strong> %s</li>
        <li><strong>Details:</strong> %s</li>
        <li><strong>Timestamp (UTC):</strong> %s</li>
      </ul>
    </div>
  </div>
</body>
</html>`

/*
Notifier is the outbound alerting surface. The escalation sweep, the
emergency router and the work-order lifecycle all talk to it; tests
swap in a recording fake.
*/
type Notifier interface {
	NotifyStaff(ctx context.Context, st *models.Staff, subject, body string) error
	NotifyVendor(ctx context.Context, v *models.Vendor, subject, body string) error
}

// NotificationService sends SMS via Twilio and email via SendGrid.
// Each channel is retried independently with bounded backoff; the
// notification succeeds if at least one channel got through.
type NotificationService struct {
	cfg      *config.Config
	twClient *twilio.RestClient
	sgClient *sendgrid.Client
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	twClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	sgClient := sendgrid.NewSendClient(cfg.SendGridAPIKey)

	return &NotificationService{
		cfg:      cfg,
		twClient: twClient,
		sgClient: sgClient,
	}
}

func (n *NotificationService) NotifyStaff(ctx context.Context, st *models.Staff, subject, body string) error {
	if st == nil {
		return fmt.Errorf("notify staff: %w", utils.ErrNotFound)
	}
	return n.send(ctx, st.Name, st.Phone, st.Email, subject, body)
}

func (n *NotificationService) NotifyVendor(ctx context.Context, v *models.Vendor, subject, body string) error {
	if v == nil {
		return fmt.Errorf("notify vendor: %w", utils.ErrNotFound)
	}
	return n.send(ctx, v.Name, v.Phone, v.Email, subject, body)
}

func (n *NotificationService) send(ctx context.Context, name, phone, email, subject, body string) error {
	smsErr := n.withRetry(ctx, func() error {
		return n.sendSMS(phone, subject+" :: "+body)
	})
	if smsErr != nil {
		utils.Logger.WithError(smsErr).Warnf("SMS delivery failed for %s", name)
	}

	emailErr := n.withRetry(ctx, func() error {
		return n.sendEmail(name, email, subject, body)
	})
	if emailErr != nil {
		utils.Logger.WithError(emailErr).Warnf("Email delivery failed for %s", name)
	}

	if smsErr != nil && emailErr != nil {
		return fmt.Errorf("all channels failed for %s: %w", name, utils.ErrExternalServiceFailure)
	}
	return nil
}

func (n *NotificationService) sendSMS(to, body string) error {
	if n.twClient == nil {
		return fmt.Errorf("twilio client not configured")
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.cfg.LDFlag_TwilioFromPhone)
	params.SetBody(body)
	_, err := n.twClient.Api.CreateMessage(params)
	return err
}

func (n *NotificationService) sendEmail(toName, toEmail, subject, body string) error {
	if n.sgClient == nil {
		return fmt.Errorf("sendgrid client not configured")
	}
	from := mail.NewEmail(n.cfg.OrganizationName, n.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail(toName, toEmail)
	htmlBody := fmt.Sprintf(
		escalationEmailHTML,
		subject,
		"An automated maintenance alert requires your attention.",
		n.cfg.OrganizationName,
		body,
		time.Now().UTC().Format(time.RFC1123Z),
	)
	msg := mail.NewSingleEmail(from, subject, to, body, htmlBody)
	msg.TrackingSettings = &mail.TrackingSettings{
		ClickTracking: &mail.ClickTrackingSetting{
			Enable: utils.Ptr(false),
		},
	}
	if n.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	_, err := n.sgClient.Send(msg)
	return err
}

// withRetry runs fn up to NotificationMaxRetries times with doubling
// backoff, honoring context cancellation between attempts.
func (n *NotificationService) withRetry(ctx context.Context, fn func() error) error {
	var err error
	backoff := constants.NotificationInitialBackoff
	for attempt := 0; attempt < constants.NotificationMaxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
