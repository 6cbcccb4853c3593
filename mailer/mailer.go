package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	brevo "github.com/getbrevo/brevo-go/lib"
	"github.com/google/uuid"
)

const (
	maxAttempts      = 3
	retryBaseDelay   = 3 * time.Second
	defaultSendLimit = 60 * time.Second
)

// Result reports the outcome of a dispatch attempt chain. Dispatch is
// best-effort: a failed Result is for observability only and must never
// fail the caller's request.
type Result struct {
	Success bool
	Error   string
	Code    string
}

// EmailItem is one order line rendered in the confirmation email.
type EmailItem struct {
	Name       string
	Image      string
	Size       string
	Quantity   int
	UnitPrice  float64
	TotalPrice float64
}

// EmailAddress is the shipping address block of the confirmation email.
type EmailAddress struct {
	Address string
	City    string
	State   string
	Pincode string
	Country string
}

// OrderEmailData is everything the confirmation template needs.
type OrderEmailData struct {
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	OrderDate       string
	Items           []EmailItem
	Subtotal        float64
	Tax             float64
	ShippingCost    float64
	TotalAmount     float64
	PaymentMethod   string
	ShippingAddress EmailAddress
}

type sendFunc func(ctx context.Context, email brevo.SendSmtpEmail) error

// Mailer sends transactional email through Brevo with bounded retry. A
// Mailer built without an API key is a logged no-op; notification must
// degrade softly, unlike payment configuration.
type Mailer struct {
	fromEmail string
	fromName  string
	replyTo   string
	timeout   time.Duration
	send      sendFunc
	sleep     func(time.Duration)
}

// New builds a Mailer around the Brevo transactional email API. The
// timeout bounds each individual attempt; zero means the 60s default.
func New(apiKey, fromEmail, fromName, replyTo string, timeout time.Duration) *Mailer {
	if timeout <= 0 {
		timeout = defaultSendLimit
	}

	m := &Mailer{
		fromEmail: fromEmail,
		fromName:  fromName,
		replyTo:   replyTo,
		timeout:   timeout,
		sleep:     time.Sleep,
	}

	if apiKey == "" {
		log.Println("mailer: BREVO_API_KEY not set, email dispatch disabled")
		return m
	}

	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	client := brevo.NewAPIClient(cfg)

	m.send = func(ctx context.Context, email brevo.SendSmtpEmail) error {
		_, _, err := client.TransactionalEmailsApi.SendTransacEmail(ctx, email)
		return err
	}
	return m
}

// SendOrderConfirmation delivers the order confirmation email, retrying
// transient failures up to three attempts with a linear attempt-scaled
// backoff (3s, 6s). Non-transient failures (bad key, malformed payload,
// quota) fail immediately. It never panics and never returns an error
// type; callers fire-and-forget it.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, data OrderEmailData) Result {
	dispatchID := uuid.New().String()

	if m.send == nil {
		log.Printf("mailer[%s]: email service not configured, skipping order %s", dispatchID, data.OrderNumber)
		return Result{Success: false, Error: "email service not configured"}
	}

	subject := "Order Confirmation - " + data.OrderNumber
	html, err := renderOrderEmail(data)
	if err != nil {
		log.Printf("mailer[%s]: template render failed for order %s: %v", dispatchID, data.OrderNumber, err)
		return Result{Success: false, Error: err.Error()}
	}

	email := brevo.SendSmtpEmail{
		Subject:     subject,
		HtmlContent: html,
		Sender:      &brevo.SendSmtpEmailSender{Name: m.fromName, Email: m.fromEmail},
		To:          []brevo.SendSmtpEmailTo{{Email: data.CustomerEmail, Name: data.CustomerName}},
	}
	if m.replyTo != "" {
		email.ReplyTo = &brevo.SendSmtpEmailReplyTo{Email: m.replyTo}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := m.send(attemptCtx, email)
		cancel()

		if err == nil {
			log.Printf("mailer[%s]: order %s confirmation sent on attempt %d", dispatchID, data.OrderNumber, attempt)
			return Result{Success: true}
		}

		lastErr = err
		log.Printf("mailer[%s]: attempt %d/%d failed for order %s: %v", dispatchID, attempt, maxAttempts, data.OrderNumber, err)

		if !isTransient(err) || attempt == maxAttempts {
			break
		}
		m.sleep(time.Duration(attempt) * retryBaseDelay)
	}

	message, code := providerError(lastErr)
	return Result{Success: false, Error: message, Code: code}
}

// isTransient classifies errors worth another attempt: connection resets
// and refusals, DNS failures, timeouts, and hung-up sockets. Provider API
// rejections are final.
func isTransient(err error) bool {
	var apiErr brevo.GenericSwaggerError
	if errors.As(err, &apiErr) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := err.Error()
	for _, marker := range []string{"ECONNRESET", "ECONNREFUSED", "ENOTFOUND", "timeout", "socket hang up", "connection reset"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// providerError extracts the Brevo error message and code when the failure
// came back from the API with a body.
func providerError(err error) (message, code string) {
	if err == nil {
		return "", ""
	}

	var apiErr brevo.GenericSwaggerError
	if errors.As(err, &apiErr) {
		var body struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if jsonErr := json.Unmarshal(apiErr.Body(), &body); jsonErr == nil && body.Message != "" {
			return body.Message, body.Code
		}
	}
	return err.Error(), ""
}
