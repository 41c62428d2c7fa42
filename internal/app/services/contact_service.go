package services

import (
	"context"
	"strings"

	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/email"
	"github.com/yigit/academy/internal/pkg/logger"
)

// ContactService forwards public contact form enquiries
type ContactService interface {
	Submit(ctx context.Context, req dto.ContactRequest) error
}

type contactServiceImpl struct {
	emailService email.EmailService
}

// NewContactService creates a new contact service instance
func NewContactService(emailService email.EmailService) ContactService {
	return &contactServiceImpl{emailService: emailService}
}

func (s *contactServiceImpl) Submit(ctx context.Context, req dto.ContactRequest) error {
	enquiry := email.Enquiry{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Topic:   strings.TrimSpace(req.Topic),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.emailService.SendEnquiry(enquiry); err != nil {
		logger.Error().Err(err).Str("topic", enquiry.Topic).Msg("Failed to forward enquiry")
		return storeError("send enquiry", err)
	}
	return nil
}
