package impl

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookingauth/internal/domain"
	"bookingauth/internal/observability/metrics"
	"bookingauth/internal/observability/middleware"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	AppName  string
	AppURL   string        // base for verification links
	Timeout  time.Duration // upper bound for one delivery
}

// VerificationLink builds the URL a user follows to confirm their address.
func VerificationLink(appURL, token string) string {
	return strings.TrimRight(appURL, "/") + "/v1/auth/verify?token=" + url.QueryEscape(token)
}

// SMTPNotificationService sends plain text mail. Each delivery is bounded by
// the context deadline or cfg.Timeout, whichever comes first.
type SMTPNotificationService struct {
	cfg  SMTPConfig
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewSMTPNotificationService(cfg SMTPConfig) *SMTPNotificationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.AppName == "" {
		cfg.AppName = "Booking"
	}
	var d net.Dialer
	return &SMTPNotificationService{cfg: cfg, dial: d.DialContext}
}

func (n *SMTPNotificationService) SendVerification(ctx context.Context, to string, token string) (err error) {
	defer countNotification(domain.KindVerification, &err)

	subject := fmt.Sprintf("%s - Confirm your email", n.cfg.AppName)
	body := fmt.Sprintf(
		"Hello,\n\n"+
			"Please confirm your email address for %s by opening the link below:\n\n"+
			"%s\n\n"+
			"The link expires in %d minutes.\n\n"+
			"The %s Team",
		n.cfg.AppName, VerificationLink(n.cfg.AppURL, token), int(domain.VerificationTokenTTL.Minutes()), n.cfg.AppName)
	return n.send(ctx, to, subject, body)
}

func (n *SMTPNotificationService) SendTwoFactorCode(ctx context.Context, to string, code string) (err error) {
	defer countNotification(domain.KindTwoFactor, &err)

	subject := fmt.Sprintf("%s - Your login code", n.cfg.AppName)
	body := fmt.Sprintf(
		"Hello,\n\n"+
			"Your %s login code is: %s\n\n"+
			"It expires in %d minutes. If you did not try to log in, change your password.\n\n"+
			"The %s Team",
		n.cfg.AppName, code, int(domain.TwoFactorTokenTTL.Minutes()), n.cfg.AppName)
	return n.send(ctx, to, subject, body)
}

func (n *SMTPNotificationService) send(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	conn, err := n.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return fmt.Errorf("smtp deadline: %w", err)
		}
	}

	c, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if n.cfg.User != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	from := n.cfg.From
	if from == "" {
		from = n.cfg.User
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMessage(from, to, subject, body)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	return c.Quit()
}

func buildMessage(from, to, subject, body string) []byte {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"", // blank line between headers and body
		body,
	}
	return []byte(strings.Join(headers, "\r\n"))
}

// LogNotificationService writes notifications to the log instead of sending
// them. Only for local development: it logs the secret at debug level.
type LogNotificationService struct {
	AppURL string
}

func (l *LogNotificationService) SendVerification(ctx context.Context, to string, token string) error {
	countNotification(domain.KindVerification, new(error))
	slog.Info("verification email (not sent)", "to", to, "request_id", middleware.RequestIDFromContext(ctx))
	slog.Debug("verification link", "to", to, "link", VerificationLink(l.AppURL, token))
	return nil
}

func (l *LogNotificationService) SendTwoFactorCode(ctx context.Context, to string, code string) error {
	countNotification(domain.KindTwoFactor, new(error))
	slog.Info("two factor email (not sent)", "to", to, "request_id", middleware.RequestIDFromContext(ctx))
	slog.Debug("two factor code", "to", to, "code", code)
	return nil
}

func countNotification(kind domain.TokenKind, err *error) {
	metrics.NotificationsSentTotal.WithLabelValues(string(kind), metrics.Result(*err)).Inc()
}
