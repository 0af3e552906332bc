package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// PushClient posts notifications to the FCM HTTP endpoint. Device tokens are
// resolved server-side by topic, one topic per recipient group.
type PushClient struct {
	H         *http.Client
	L         *logrus.Logger
	endpoint  string
	serverKey string
}

type pushMessage struct {
	To           string            `json:"to"`
	Notification pushNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Image string `json:"image,omitempty"`
}

func NewPushClient(l *logrus.Logger) *PushClient {
	endpoint := os.Getenv("FCM_ENDPOINT")
	if endpoint == "" {
		endpoint = "https://fcm.googleapis.com/fcm/send"
	}
	return &PushClient{
		H:         &http.Client{Timeout: 10 * time.Second},
		L:         l,
		endpoint:  endpoint,
		serverKey: os.Getenv("FCM_SERVER_KEY"),
	}
}

// SendToTopic pushes one notification to every device subscribed to a topic.
func (p *PushClient) SendToTopic(topic, title, body, imageUrl string) error {
	msg := pushMessage{
		To: "/topics/" + topic,
		Notification: pushNotification{
			Title: title,
			Body:  body,
			Image: imageUrl,
		},
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, p.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+p.serverKey)

	resp, err := p.H.Do(req)
	if err != nil {
		p.L.Errorf("Error sending push to topic %s: %s", topic, err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.L.Errorf("Push to topic %s returned status %d", topic, resp.StatusCode)
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
