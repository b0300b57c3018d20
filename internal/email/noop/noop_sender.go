package noop

import (
	"context"
	"log"

	"snapdoc/internal/port"
)

type noopSender struct{}

// NewNoopSender creates an EmailSender that only logs. Used in
// development and in deployments without SES access.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendProcessingFailureAlert(_ context.Context, toEmail, documentID, errorMessage string) error {
	log.Printf("email.noop: would alert %s about document %s: %s", toEmail, documentID, errorMessage)
	return nil
}
