package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salmankavanur/aic-amal-backend/models"
)

func TestValidateSendRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.SendNotificationRequest
		wantErr string
	}{
		{
			name: "push without title",
			req: models.SendNotificationRequest{
				Channel:   models.ChannelPush,
				UserGroup: models.GroupAll,
				Body:      "hello",
			},
			wantErr: MsgPushTitleRequired,
		},
		{
			name: "push with whitespace title",
			req: models.SendNotificationRequest{
				Channel:   models.ChannelPush,
				UserGroup: models.GroupAll,
				Title:     "   ",
				Body:      "hello",
			},
			wantErr: MsgPushTitleRequired,
		},
		{
			name: "email without subject",
			req: models.SendNotificationRequest{
				Channel:   models.ChannelEmail,
				UserGroup: models.GroupSubscribers,
				Body:      "hello",
			},
			wantErr: MsgEmailSubjectRequired,
		},
		{
			name: "whatsapp without body",
			req: models.SendNotificationRequest{
				Channel:   models.ChannelWhatsapp,
				UserGroup: models.GroupAll,
			},
			wantErr: MsgBodyRequired,
		},
		{
			name: "push to custom recipients",
			req: models.SendNotificationRequest{
				Channel:   models.ChannelPush,
				UserGroup: models.GroupCustom,
				Title:     "Update",
				Body:      "hello",
			},
			wantErr: MsgPushCustomUnsupported,
		},
		{
			name: "unknown channel",
			req: models.SendNotificationRequest{
				Channel:   "carrier_pigeon",
				UserGroup: models.GroupAll,
				Body:      "hello",
			},
			wantErr: "invalid channel",
		},
		{
			name: "unknown user group",
			req: models.SendNotificationRequest{
				Channel:   models.ChannelWhatsapp,
				UserGroup: "nobody",
				Body:      "hello",
			},
			wantErr: "invalid user group",
		},
		{
			name: "valid push",
			req: models.SendNotificationRequest{
				Channel:   models.ChannelPush,
				UserGroup: models.GroupBoxholders,
				Title:     "Collection day",
				Body:      "Boxes will be collected tomorrow",
			},
		},
		{
			name: "valid email",
			req: models.SendNotificationRequest{
				Channel:   models.ChannelEmail,
				UserGroup: models.GroupCustom,
				Subject:   "Receipt",
				Body:      "Thank you for your donation",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSendRequest(&tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeRecipients(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "trims and drops empties",
			in:   []string{" 9847012345 ", "", "   "},
			want: []string{"9847012345"},
		},
		{
			name: "dedupes keeping first occurrence order",
			in:   []string{"b@x.org", "a@x.org", "b@x.org"},
			want: []string{"b@x.org", "a@x.org"},
		},
		{
			name: "nil input",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRecipients(tt.in))
		})
	}
}

func TestDispatchStatus(t *testing.T) {
	tests := []struct {
		name                string
		total, sent, failed int
		want                string
	}{
		{name: "all delivered", total: 3, sent: 3, failed: 0, want: models.NotificationSent},
		{name: "empty recipient list", total: 0, sent: 0, failed: 0, want: models.NotificationSent},
		{name: "all failed", total: 3, sent: 0, failed: 3, want: models.NotificationFailed},
		{name: "mixed outcome", total: 3, sent: 2, failed: 1, want: models.NotificationPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dispatchStatus(tt.total, tt.sent, tt.failed))
		})
	}
}
