package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spinwin/promo-core/internal/app/stores"
	"github.com/spinwin/promo-core/internal/infrastructures"
)

// QRService asks an external image service to render a voucher QR code and
// stores the resulting URL. The whole thing is best-effort: a voucher with
// no image is still fully redeemable.
type QRService struct {
	httpClient *http.Client
	serviceURL string
	store      stores.VoucherStore
}

func NewQRService(store stores.VoucherStore) *QRService {
	serviceURL := ""
	if infrastructures.Config != nil {
		serviceURL = infrastructures.Config.QR_SERVICE_URL
	}
	return &QRService{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		serviceURL: serviceURL,
		store:      store,
	}
}

// Dispatch kicks off QR generation in the background and returns immediately.
func (s *QRService) Dispatch(voucherID uuid.UUID, code string) {
	if s.serviceURL == "" {
		return
	}
	go s.generate(voucherID, code)
}

func (s *QRService) generate(voucherID uuid.UUID, code string) {
	payload, err := json.Marshal(map[string]string{"content": code})
	if err != nil {
		logrus.Errorf("qr request marshal failed for %s: %v", code, err)
		return
	}

	resp, err := s.httpClient.Post(s.serviceURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		logrus.Errorf("qr generation failed for %s: %v", code, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		logrus.Errorf("qr generation for %s returned %d", code, resp.StatusCode)
		return
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.URL == "" {
		logrus.Errorf("qr generation for %s returned an unusable response: %v", code, err)
		return
	}

	if err := s.store.SetQRImageURL(context.Background(), voucherID, result.URL); err != nil {
		logrus.Errorf("qr url update failed for %s: %v", code, err)
	}
}
