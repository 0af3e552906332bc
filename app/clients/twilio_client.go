package client

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type SendMessageResponse struct {
	Successful   bool   `json:"successful"`
	ErrorMessage string `json:"error_message"`
}

type TwilioClient struct {
	Client         *twilio.RestClient
	L              *logrus.Logger
	number         string
	whatsappNumber string
}

func NewTwilioClient(l *logrus.Logger) *TwilioClient {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	return &TwilioClient{
		Client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		L:              l,
		number:         os.Getenv("TWILIO_PHONE_NUMBER"),
		whatsappNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
	}
}

func (t *TwilioClient) SendSMS(to, body string) (*SendMessageResponse, error) {
	return t.send(to, t.number, body)
}

// SendWhatsapp delivers through the same messages API with the whatsapp
// address scheme.
func (t *TwilioClient) SendWhatsapp(to, body string) (*SendMessageResponse, error) {
	return t.send("whatsapp:"+to, "whatsapp:"+t.whatsappNumber, body)
}

func (t *TwilioClient) send(to, from, body string) (*SendMessageResponse, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	_, err := t.Client.Api.CreateMessage(params)
	if err != nil {
		t.L.Errorf("Error sending message: %s", err.Error())
		return &SendMessageResponse{Successful: false, ErrorMessage: err.Error()}, err
	}
	return &SendMessageResponse{Successful: true, ErrorMessage: "none"}, nil
}
