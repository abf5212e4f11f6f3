package services

import (
	"context"
	"errors"
	"time"

	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/store"
	"github.com/sharearide/sharearide-backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

// CodeSender delivers a freshly issued verification code to the booking's passenger.
type CodeSender interface {
	SendCode(ctx context.Context, booking *models.Booking, code string) error
}

// ContactCodeSender sends codes by SMS and email to the passenger's contact
// details, stating the code lifetime ttl (zero: no expiry). With LogCodes set
// it also writes the code to the log, which is how codes reach testers in
// development.
type ContactCodeSender struct {
	store    store.Store
	sms      *utils.SMSClient
	mailer   *utils.Mailer
	ttl      time.Duration
	log      *logrus.Logger
	LogCodes bool
}

func NewContactCodeSender(st store.Store, sms *utils.SMSClient, mailer *utils.Mailer, ttl time.Duration, log *logrus.Logger) *ContactCodeSender {
	return &ContactCodeSender{store: st, sms: sms, mailer: mailer, ttl: ttl, log: log}
}

func (s *ContactCodeSender) SendCode(ctx context.Context, booking *models.Booking, code string) error {
	entry := s.log.WithField("booking_id", booking.ID)
	if s.LogCodes {
		entry.WithField("code", code).Info("Payment verification code issued")
	}

	person, err := s.store.FindPerson(ctx, booking.PassengerID)
	if err != nil {
		return err
	}

	var errs []error
	if s.sms.Configured() && person.PhoneNumber != "" {
		if err := s.sms.SendPaymentCodeSMS(ctx, person.PhoneNumber, code, s.ttl); err != nil {
			errs = append(errs, err)
		}
	}
	if s.mailer.Configured() && person.Email != "" {
		if err := s.mailer.SendPaymentCodeEmail(person.Email, code, s.ttl); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
