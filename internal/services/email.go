package services

import (
	"context"
	"fmt"
	"log"

	"xvent/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendVerificationEmail sends the account verification email using the
// "verification" template and the given data.
func (s *emailService) SendVerificationEmail(ctx context.Context, data *domain.VerificationEmailData) error {
	if data == nil {
		return fmt.Errorf("verification email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("verification", data)
	if err != nil {
		return fmt.Errorf("failed to render verification template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	log.Printf("[EMAIL] Verification email sent to %s", data.Email)
	return nil
}
