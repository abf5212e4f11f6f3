package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const africasTalkingURL = "https://api.africastalking.com/version1/messaging"

// SMSClient sends text messages through the Africa's Talking messaging API.
type SMSClient struct {
	Username string
	APIKey   string
	BaseURL  string
	HTTP     *http.Client
}

func NewSMSClient(username, apiKey string) *SMSClient {
	return &SMSClient{
		Username: username,
		APIKey:   apiKey,
		BaseURL:  africasTalkingURL,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *SMSClient) Configured() bool {
	return c != nil && c.Username != "" && c.APIKey != ""
}

func (c *SMSClient) send(ctx context.Context, message string, recipients []string) error {
	if c.Username == "" {
		return fmt.Errorf("africa's talking username not set")
	}
	if c.APIKey == "" {
		return fmt.Errorf("africa's talking API key not set")
	}

	data := url.Values{}
	data.Set("username", c.Username)
	data.Set("to", strings.Join(recipients, ","))
	data.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send SMS: status code %d", resp.StatusCode)
	}
	return nil
}

// SendPaymentCodeSMS texts a payment code valid for ttl; zero means no expiry.
func (c *SMSClient) SendPaymentCodeSMS(ctx context.Context, phone, code string, ttl time.Duration) error {
	msg := strings.TrimSpace(fmt.Sprintf("Your Share-a-Ride payment code is %s. %s", code, ExpiryNotice(ttl)))
	return c.send(ctx, msg, []string{phone})
}

func (c *SMSClient) SendRideRequestDecisionSMS(ctx context.Context, phone, departure, destination string, accepted bool) error {
	msg := fmt.Sprintf("Your ride request from %s to %s was accepted. Have a good trip!", departure, destination)
	if !accepted {
		msg = fmt.Sprintf("Your ride request from %s to %s could not be accepted. Please try another offer.",
			departure, destination)
	}
	return c.send(ctx, msg, []string{phone})
}
