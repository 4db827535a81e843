package mailer

import (
	"fmt"
	"html"
	"os"
	"time"
	"villas/src/lib"
	libaws "villas/src/lib/aws"

	"github.com/aws/aws-sdk-go-v2/aws"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type BookingDetails struct {
	GuestName    string
	CheckInDate  string
	CheckOutDate string
	PropertyName string
	Nights       int
	Confirmation string
}

type ContactDetails struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func send(to []string, replyTo, subject, html string) error {
	from := os.Getenv("MAIL_FROM")
	fromName := os.Getenv("MAIL_FROM_NAME")
	if fromName == "" {
		fromName = "Gjovana's Villas"
	}
	if os.Getenv("MAIL_TRANSPORT") == "ses" {
		dest := &sestypes.Destination{ToAddresses: to}
		msg := &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Html: &sestypes.Content{Data: aws.String(html)},
			},
		}
		source := fmt.Sprintf("%s <%s>", fromName, from)
		return libaws.SESSendMessage(&source, dest, msg)
	}
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       to,
		ReplyTo:  replyTo,
		Subject:  subject,
		Body:     html,
		Html:     true,
	})
}

// SendBookingConfirmation emails the guest after a verified payment.
func SendBookingConfirmation(email string, d *BookingDetails) error {
	body := fmt.Sprintf(`
    <h1>Booking Confirmation</h1>
    <p>Hi %s,</p>
    <p>Thank you for your booking! Your confirmation number is <strong>%s</strong>.</p>
    <p>Here are your booking details:</p>
    <ul>
      <li><strong>Property:</strong> %s</li>
      <li><strong>Check-In Date:</strong> %s</li>
      <li><strong>Check-Out Date:</strong> %s</li>
      <li><strong>Duration:</strong> %d nights</li>
    </ul>
    <p>We look forward to hosting you!</p>`,
		d.GuestName, d.Confirmation, d.PropertyName, d.CheckInDate, d.CheckOutDate, d.Nights)
	subject := fmt.Sprintf("Your Booking Confirmation - %s", d.Confirmation)
	return send([]string{email}, "", subject, body)
}

// SendContactRelay forwards a contact-form submission to the site owner.
func SendContactRelay(d *ContactDetails) error {
	to := os.Getenv("CONTACT_EMAIL")
	body := fmt.Sprintf(`
    <h1>New Contact Form Submission</h1>
    <p>You have received a new message from the contact form on your website.</p>
    <table>
      <tr><td><strong>Name</strong></td><td>%s</td></tr>
      <tr><td><strong>Email</strong></td><td><a href="mailto:%s">%s</a></td></tr>
      <tr><td><strong>Subject</strong></td><td>%s</td></tr>
    </table>
    <h3>Message:</h3>
    <p style="white-space: pre-wrap;">%s</p>
    <p>&copy; %d Gjovana's Villas. This is an automated message from your website contact form.</p>`,
		html.EscapeString(d.Name), d.Email, d.Email, html.EscapeString(d.Subject), html.EscapeString(d.Message), time.Now().Year())
	return send([]string{to}, d.Email, d.Subject, body)
}
