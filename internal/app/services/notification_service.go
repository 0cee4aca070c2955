package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spinwin/promo-core/internal/app/models"
	"github.com/spinwin/promo-core/internal/infrastructures"
)

// NotificationService pushes voucher events to the messaging gateway.
// Delivery is fire-and-forget: a failed send is logged and never rolls back
// voucher state. With no webhook configured it degrades to log-only.
type NotificationService struct {
	httpClient *http.Client
	webhookURL string
}

func NewNotificationService() *NotificationService {
	webhookURL := ""
	if infrastructures.Config != nil {
		webhookURL = infrastructures.Config.NOTIFY_WEBHOOK_URL
	}
	return &NotificationService{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		webhookURL: webhookURL,
	}
}

type voucherNotification struct {
	Event      string     `json:"event"`
	Code       string     `json:"code"`
	Prize      prizeRef   `json:"prize"`
	ExpiresAt  time.Time  `json:"expires_at"`
	QRImageURL *string    `json:"qr_image_url,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
}

type prizeRef struct {
	Name string `json:"name"`
}

func (s *NotificationService) NotifyCreated(voucher *models.Voucher) {
	s.send(voucherNotification{
		Event:      "voucher.created",
		Code:       voucher.Code,
		Prize:      prizeRef{Name: prizeName(voucher)},
		ExpiresAt:  voucher.ExpiresAt,
		QRImageURL: voucher.QRImageURL,
	})
}

func (s *NotificationService) NotifyRedeemed(voucher *models.Voucher) {
	s.send(voucherNotification{
		Event:      "voucher.redeemed",
		Code:       voucher.Code,
		Prize:      prizeRef{Name: prizeName(voucher)},
		ExpiresAt:  voucher.ExpiresAt,
		RedeemedAt: voucher.RedeemedAt,
	})
}

func (s *NotificationService) send(notification voucherNotification) {
	if s.webhookURL == "" {
		logrus.Infof("notification (no webhook configured): %s %s", notification.Event, notification.Code)
		return
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		logrus.Errorf("notification marshal failed: %v", err)
		return
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		logrus.Errorf("notification delivery failed for %s: %v", notification.Code, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		logrus.Errorf("notification delivery for %s returned %d", notification.Code, resp.StatusCode)
	}
}
