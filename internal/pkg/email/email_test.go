package email

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEnquiryWithoutCredentialsOnlyLogs(t *testing.T) {
	var buf bytes.Buffer
	svc := NewEmailService(SMTPConfig{}, zerolog.New(&buf))

	err := svc.SendEnquiry(Enquiry{Name: "Ada", Email: "ada@example.com", Message: "Hi"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "enquiry not sent")
	assert.Contains(t, buf.String(), "ada@example.com")
}

func TestSendEnquiryBuildsEscapedMessage(t *testing.T) {
	svc := NewEmailService(SMTPConfig{
		Host:         "smtp.example.com",
		Port:         587,
		Username:     "user",
		Password:     "secret",
		FromName:     "Academy",
		FromEmail:    "noreply@example.com",
		ContactEmail: "team@example.com",
	}, zerolog.Nop()).(*EmailServiceImpl)

	var gotTo, gotMsg string
	svc.send = func(to, message string) error {
		gotTo, gotMsg = to, message
		return nil
	}

	err := svc.SendEnquiry(Enquiry{
		Name:    "Ada",
		Email:   "ada@example.com\r\nBcc: victim@example.com",
		Topic:   "Bootcamp",
		Message: "<b>hello</b>",
	})
	require.NoError(t, err)

	assert.Equal(t, "team@example.com", gotTo)
	assert.Contains(t, gotMsg, "Subject: Academy enquiry: Bootcamp\r\n")
	assert.Contains(t, gotMsg, "Reply-To: ada@example.com  Bcc: victim@example.com\r\n")
	assert.NotContains(t, gotMsg, "\r\nBcc:")
	assert.NotContains(t, gotMsg, "\nBcc:")
	assert.Contains(t, gotMsg, "ada@example.com  Bcc: victim@example.com&gt;</p>")
	assert.Contains(t, gotMsg, "&lt;b&gt;hello&lt;/b&gt;")
}

func TestSendEnquiryStripsLineBreaksFromName(t *testing.T) {
	svc := NewEmailService(SMTPConfig{
		Username:     "user",
		Password:     "secret",
		FromName:     "Academy",
		FromEmail:    "noreply@example.com",
		ContactEmail: "team@example.com",
	}, zerolog.Nop()).(*EmailServiceImpl)

	var gotMsg string
	svc.send = func(_, message string) error {
		gotMsg = message
		return nil
	}

	require.NoError(t, svc.SendEnquiry(Enquiry{
		Name:    "Ada\r\nX-Injected: yes",
		Email:   "ada@example.com",
		Message: "hi",
	}))

	assert.NotContains(t, gotMsg, "\r\nX-Injected")
	assert.Contains(t, gotMsg, "Subject: Academy enquiry: General\r\n")
	assert.Contains(t, gotMsg, "Ada  X-Injected: yes")
}
