package service

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// EmailService отправляет транзакционные письма
type EmailService interface {
	SendExportReady(ctx context.Context, toEmail, filename, downloadURL string) error
}

// NoopEmailService используется, когда отправка почты выключена
type NoopEmailService struct{}

// SendExportReady логирует отправку вместо реального письма
func (s *NoopEmailService) SendExportReady(ctx context.Context, toEmail, filename, downloadURL string) error {
	log.Printf("[EmailService] noop send export ready to=%s file=%s", toEmail, filename)
	return nil
}

// ResendEmailService отправляет письма через Resend REST API
type ResendEmailService struct {
	from   string
	client *resend.Client
}

// NewResendEmailService создает новый почтовый сервис
func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

// SendExportReady уведомляет администратора о готовности экспорта
func (s *ResendEmailService) SendExportReady(ctx context.Context, toEmail, filename, downloadURL string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Your export is ready",
		Text:    fmt.Sprintf("Export %s is ready. Download: %s", filename, downloadURL),
		Html:    fmt.Sprintf("<p>Export <strong>%s</strong> is ready.</p><p><a href=%q>Download</a></p>", filename, downloadURL),
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send export email: %w", err)
	}
	return nil
}
