package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/MedCore-Microservices/clinic-api/internal/config"
)

type gomailService struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

// NewGomailService sends mail over SMTP using gomail.
func NewGomailService(cfg config.SMTPConfig) Service {
	return &gomailService{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *gomailService) SendVerification(ctx context.Context, to string, token string) error {
	link := fmt.Sprintf("%s/api/v1/auth/verify?token=%s", s.cfg.BaseURL, token)
	body := fmt.Sprintf("Please verify your email address by visiting:\n\n%s\n", link)
	return s.send(ctx, to, "Verify your email", body)
}

func (s *gomailService) SendWelcome(ctx context.Context, to string, name string) error {
	body := fmt.Sprintf("Welcome to the clinic, %s.\n", name)
	return s.send(ctx, to, "Welcome", body)
}

func (s *gomailService) send(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
