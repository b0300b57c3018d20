package port

import "context"

// EmailSender abstracts outbound email for operational alerts.
type EmailSender interface {
	SendProcessingFailureAlert(ctx context.Context, toEmail, documentID, errorMessage string) error
}
