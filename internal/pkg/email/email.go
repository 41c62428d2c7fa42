package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for outgoing mail
type EmailService interface {
	SendEnquiry(enquiry Enquiry) error
}

// Enquiry is a message submitted through the public contact form
type Enquiry struct {
	Name    string
	Email   string
	Topic   string
	Message string
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	// ContactEmail receives contact form enquiries
	ContactEmail string
	UseTLS       bool
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(to, message string) error
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	s := &EmailServiceImpl{
		config: config,
		logger: logger,
	}
	s.send = s.sendSMTP
	return s
}

var enquiryTemplate = template.Must(template.New("enquiry").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">New enquiry: {{.Topic}}</h2>
		<p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
		<p style="white-space: pre-wrap;">{{.Message}}</p>
	</div>
</body>
</html>`))

// SendEnquiry forwards a contact form enquiry to the configured inbox
func (s *EmailServiceImpl) SendEnquiry(enquiry Enquiry) error {
	if enquiry.Topic == "" {
		enquiry.Topic = "General"
	}

	// Without credentials the enquiry is only logged (development)
	if s.config.Username == "" || s.config.Password == "" || s.config.ContactEmail == "" {
		s.logger.Warn().
			Str("fromEmail", enquiry.Email).
			Str("fromName", enquiry.Name).
			Str("topic", enquiry.Topic).
			Msg("SMTP credentials not configured - enquiry not sent")
		return nil
	}

	message, err := s.buildEnquiryMessage(enquiry)
	if err != nil {
		return err
	}
	return s.send(s.config.ContactEmail, message)
}

func (s *EmailServiceImpl) buildEnquiryMessage(enquiry Enquiry) (string, error) {
	enquiry.Name = headerSafe(enquiry.Name)
	enquiry.Email = headerSafe(enquiry.Email)
	enquiry.Topic = headerSafe(enquiry.Topic)

	var body bytes.Buffer
	if err := enquiryTemplate.Execute(&body, enquiry); err != nil {
		return "", fmt.Errorf("failed to render enquiry: %w", err)
	}

	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)},
		{"To", s.config.ContactEmail},
		{"Reply-To", enquiry.Email},
		{"Subject", "Academy enquiry: " + enquiry.Topic},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.String(), nil
}

// headerSafe strips line breaks so user input cannot add headers
func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// sendSMTP delivers a prepared message
func (s *EmailServiceImpl) sendSMTP(toEmail, message string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, []byte(message)); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create SMTP client")
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
