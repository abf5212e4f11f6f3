package utils

import (
	"fmt"
	"net/smtp"
	"sort"
	"strings"
	"time"
)

const companyName = "Share-a-Ride"

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #2e7d32; margin: 0;">Share-a-Ride</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
		</div>
	</div>
</body>
</html>
`

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers HTML mail over SMTP with plain auth.
type Mailer struct {
	From     string
	Password string
	Host     string
	Port     string
	BaseURL  string

	sendMail sendMailFunc
}

func NewMailer(from, password, host, port, baseURL string) *Mailer {
	return &Mailer{From: from, Password: password, Host: host, Port: port, BaseURL: baseURL, sendMail: smtp.SendMail}
}

func (m *Mailer) Configured() bool {
	return m != nil && m.From != "" && m.Password != "" && m.Host != "" && m.Port != ""
}

func (m *Mailer) sendEmail(to []string, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("email configuration not set")
	}

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", companyName, m.From),
		"To":           strings.Join(to, ","),
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
		"X-Mailer":     "ShareARide-Mailer",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msg strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&msg, "%s: %s\r\n", k, headers[k])
	}
	msg.WriteString("\r\n" + body)

	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	if err := m.sendMail(m.Host+":"+m.Port, auth, m.From, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (m *Mailer) SendPaymentCodeEmail(to, code string, ttl time.Duration) error {
	subject := "Your payment code - Share-a-Ride"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Confirm your payment</h1>
					<p>Hello,</p>
					<p>Use the code below to confirm the payment of your booking:</p>
					<p style="font-size: 28px; letter-spacing: 6px; text-align: center;"><strong>%s</strong></p>
					<p>%s</p>
				</div>`+emailFooter,
		code, strings.TrimSpace(ExpiryNotice(ttl)+" If you did not start a payment, ignore this email."))

	return m.sendEmail([]string{to}, subject, body)
}

func (m *Mailer) SendBookingConfirmedEmail(to, departure, destination, receiptURL string) error {
	subject := "Booking confirmed - Share-a-Ride"
	receipt := ""
	if receiptURL != "" {
		receipt = fmt.Sprintf(`<div style="text-align: center; margin: 30px 0;">
						<a href="%s" style="background-color: #2e7d32; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Download receipt</a>
					</div>`, receiptURL)
	}
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking confirmed</h1>
					<p>Your ride from <strong>%s</strong> to <strong>%s</strong> is confirmed and paid.</p>
					%s
					<p>See you on board,<br>The Share-a-Ride Team</p>
				</div>`+emailFooter,
		departure, destination, receipt)

	return m.sendEmail([]string{to}, subject, body)
}
