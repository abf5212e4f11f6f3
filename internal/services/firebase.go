package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/store"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// MessageSender is the slice of the FCM client the push notifier uses.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// InitFirebase returns an FCM client, or nil when no service account is configured.
func InitFirebase(ctx context.Context, credentialsPath string) (*messaging.Client, error) {
	if credentialsPath == "" {
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return client, nil
}

type NotificationPayload struct {
	Title string
	Body  string
	Data  map[string]string
	Tag   string
}

func androidConfig(payload NotificationPayload) *messaging.AndroidConfig {
	return &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound:                 "default",
			ChannelID:             "sharearide_default",
			Priority:              messaging.PriorityHigh,
			DefaultSound:          true,
			Tag:                   payload.Tag,
			DefaultVibrateTimings: true,
		},
	}
}

func apnsConfig() *messaging.APNSConfig {
	badge := 1
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Sound:          "default",
				Badge:          &badge,
				MutableContent: true,
			},
		},
	}
}

// PushNotifier sends FCM pushes to persons with a registered push token.
type PushNotifier struct {
	store  store.Store
	sender MessageSender
	log    *logrus.Logger
}

func NewPushNotifier(st store.Store, sender MessageSender, log *logrus.Logger) *PushNotifier {
	return &PushNotifier{store: st, sender: sender, log: log}
}

func (n *PushNotifier) RideRequestDecided(ctx context.Context, req *models.RideRequest) {
	title, body := "Ride request declined", "The ride you asked for has no room left."
	if req.Status == models.RideRequestStatusAccepted {
		title, body = "Ride request accepted", "You have a seat. See you on the road!"
	}
	n.push(ctx, req.PersonID, NotificationPayload{
		Title: title,
		Body:  body,
		Tag:   fmt.Sprintf("ride_request_%d", req.ID),
		Data: map[string]string{
			"type":        EventRideRequestDecided,
			"requestId":   fmt.Sprint(req.ID),
			"rideOfferId": fmt.Sprint(req.RideOfferID),
			"status":      string(req.Status),
		},
	})
}

func (n *PushNotifier) BookingUpdated(ctx context.Context, event string, b *models.Booking) {
	var title string
	switch event {
	case EventBookingConfirmed:
		title = "Booking confirmed"
	case EventBookingCancelled:
		title = "Booking cancelled"
	case EventBookingRefunded:
		title = "Refund processed"
	default:
		return
	}
	n.push(ctx, b.PassengerID, NotificationPayload{
		Title: title,
		Body:  fmt.Sprintf("%s to %s on %s", b.DepartureCity, b.DestinationCity, b.DepartureTime.Format("Jan 2, 15:04")),
		Tag:   fmt.Sprintf("booking_%d", b.ID),
		Data: map[string]string{
			"type":      event,
			"bookingId": fmt.Sprint(b.ID),
			"status":    string(b.Status),
		},
	})
}

func (n *PushNotifier) push(ctx context.Context, personID uint, payload NotificationPayload) {
	if n.sender == nil {
		return
	}
	person, err := n.store.FindPerson(ctx, personID)
	if err != nil || person.PushToken == "" {
		return
	}

	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data:    payload.Data,
		Token:   person.PushToken,
		Android: androidConfig(payload),
		APNS:    apnsConfig(),
	}

	entry := n.log.WithFields(logrus.Fields{"person_id": personID, "type": payload.Data["type"]})
	if _, err := n.sender.Send(ctx, message); err != nil {
		entry.WithError(err).Warn("Failed to send push notification")
		return
	}
	entry.Debug("Push notification sent")
}
