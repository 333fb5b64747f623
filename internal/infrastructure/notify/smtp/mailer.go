package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/infrastructure/resilience"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// ReviewURL is the reviewer UI base; the subfolder id is appended.
	ReviewURL string
}

const dialTimeout = 10 * time.Second

type sendFunc func(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers review-request emails over SMTP.
type Mailer struct {
	cfg      Config
	send     sendFunc
	executor *resilience.Executor
}

func NewMailer(cfg Config, executor *resilience.Executor) *Mailer {
	return &Mailer{cfg: cfg, send: sendMail, executor: executor}
}

func (m *Mailer) NotifyReviewRequested(ctx context.Context, req domain.ReviewRequest) error {
	if len(req.Recipients) == 0 {
		return domain.Validation("smtp.notify", "review request for subfolder %s has no recipients", req.SubfolderID)
	}
	msg := m.buildMessage(req)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	call := func(callCtx context.Context) error {
		if err := callCtx.Err(); err != nil {
			return err
		}
		if err := m.sendWithContext(callCtx, addr, auth, req.Recipients, msg); err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	}
	if m.executor == nil {
		return classifyResult(call(ctx))
	}
	return classifyResult(m.executor.Execute(ctx, "smtp.send", call, classifySMTPError))
}

// sendWithContext returns once ctx is done even if the sender ignores it.
func (m *Mailer) sendWithContext(ctx context.Context, addr string, auth smtp.Auth, to []string, msg []byte) error {
	done := make(chan error, 1)
	go func() { done <- m.send(ctx, addr, auth, m.cfg.From, to, msg) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sendMail is smtp.SendMail with the connection bound to ctx.
func sendMail(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	conn, err := (&net.Dialer{Timeout: dialTimeout}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (m *Mailer) buildMessage(req domain.ReviewRequest) []byte {
	subject := fmt.Sprintf("Documents submitted for review: %s", req.FolderLabel)

	var body strings.Builder
	fmt.Fprintf(&body, "%s submitted documents for review.\n\n", requesterName(req.Requester))
	fmt.Fprintf(&body, "Company: %s\n", headerValue(req.CompanyName))
	fmt.Fprintf(&body, "Folder: %s\n", headerValue(req.FolderLabel))
	fmt.Fprintf(&body, "Category: %s\n", headerValue(req.CategoryLabel))
	fmt.Fprintf(&body, "Submitted at: %s\n", req.SubmittedAt.UTC().Format(time.RFC1123))
	if m.cfg.ReviewURL != "" {
		fmt.Fprintf(&body, "\nReview: %s/%s\n", strings.TrimRight(m.cfg.ReviewURL, "/"), req.SubfolderID)
	}

	headers := []string{
		"From: " + headerValue(m.cfg.From),
		"To: " + headerValue(strings.Join(req.Recipients, ", ")),
		"Subject: " + mime.QEncoding.Encode("UTF-8", headerValue(subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
	}
	if req.Requester.Email != "" {
		headers = append(headers, "Reply-To: "+headerValue(req.Requester.Email))
	}
	raw := strings.Join(headers, "\n") + "\n\n" + body.String()
	return []byte(strings.ReplaceAll(raw, "\n", "\r\n"))
}

// headerValue folds line breaks into spaces so a value cannot start a new header.
func headerValue(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}

func requesterName(u domain.User) string {
	switch {
	case u.Name != "" && u.Email != "":
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return "A contractor"
	}
}

// classifySMTPError retries 4xx replies and network failures; 5xx replies are permanent.
func classifySMTPError(err error) resilience.ErrorClassification {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	if isTransient(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

func isTransient(err error) bool {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code >= 400 && protoErr.Code < 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) || resilience.IsCircuitOpen(err)
}

func classifyResult(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrValidation) {
		return err
	}
	if isTransient(err) {
		return domain.WrapError(domain.ErrTemporary, "smtp.notify", err)
	}
	return err
}
