package notify

import (
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// Channel is a thin abstraction over the configured outbound messaging
// provider. Send returns false when the message was not delivered; it
// never returns an error because nothing upstream may fail on it.
type Channel interface {
	Send(to, body string) bool
}

// TwilioWhatsAppChannel sends messages through the Twilio WhatsApp API.
// With missing credentials or sender identity it stays as a permanent
// no-op: Send returns false without calling out.
type TwilioWhatsAppChannel struct {
	client *twilio.RestClient
	from   string
	logger *zap.Logger
}

// NewTwilioWhatsAppChannel creates the channel. accountSID, authToken and
// from are provisioned externally; any of them empty, or enabled false,
// disables the channel.
func NewTwilioWhatsAppChannel(accountSID, authToken, from string, enabled bool, logger *zap.Logger) *TwilioWhatsAppChannel {
	c := &TwilioWhatsAppChannel{from: from, logger: logger}
	if !enabled {
		logger.Info("whatsapp notifications disabled by configuration")
		return c
	}
	if accountSID == "" || authToken == "" || from == "" {
		logger.Warn("twilio credentials not configured, whatsapp notifications disabled")
		return c
	}
	c.client = twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return c
}

// Configured reports whether the channel can actually send
func (c *TwilioWhatsAppChannel) Configured() bool {
	return c.client != nil
}

// Send delivers one WhatsApp message. The recipient number is already
// validated at the settings boundary; this only adds the transport prefix.
func (c *TwilioWhatsAppChannel) Send(to, body string) bool {
	if c.client == nil {
		return false
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo("whatsapp:" + strings.TrimPrefix(to, "whatsapp:"))
	params.SetFrom("whatsapp:" + c.from)
	params.SetBody(body)

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		c.logger.Error("failed to send whatsapp message", zap.Error(err))
		return false
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	c.logger.Info("whatsapp message sent", zap.String("sid", sid))
	return true
}
