package infrastructure

import (
	"context"
	"log"

	"github.com/mercato/order-system/shared/models"
)

// LogEmailSender writes notifications to the process log. It stands in for a
// real mail provider in local and test environments.
type LogEmailSender struct{}

// NewLogEmailSender creates a LogEmailSender
func NewLogEmailSender() *LogEmailSender {
	return &LogEmailSender{}
}

// SendConfirmation logs the confirmation email
func (s *LogEmailSender) SendConfirmation(ctx context.Context, email string, orderID models.ID) error {
	log.Printf("email to %s: your order %s is confirmed", email, orderID)
	return nil
}

// SendFailure logs the failure email
func (s *LogEmailSender) SendFailure(ctx context.Context, email string, orderID models.ID, reason string) error {
	log.Printf("email to %s: your order %s could not be completed: %s", email, orderID, reason)
	return nil
}
