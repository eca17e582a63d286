// Package qrcode generates scannable share codes for produce listings.
package qrcode

import (
	"encoding/json"
	"fmt"
	"strings"

	"agriconnect/config"
	"agriconnect/internal/domain/service"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const listingQRType = "listing"

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
	baseURL              string
}

// QRCodeData represents the QR code payload
type QRCodeData struct {
	ListingID string `json:"listing_id"`
	Type      string `json:"type"`
	Link      string `json:"link,omitempty"`
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(cfg *config.QRCodeConfig) service.QRCodeService {
	size := 256
	levelName := ""
	baseURL := ""

	if cfg != nil {
		if cfg.Size > 0 {
			size = cfg.Size
		}
		levelName = cfg.ErrorCorrectionLevel
		baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	var level qrcode.RecoveryLevel
	switch levelName {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
		baseURL:              baseURL,
	}
}

// GenerateListingQR generates a PNG QR code that buyers scan to open a listing
func (s *qrcodeService) GenerateListingQR(listingID uuid.UUID) ([]byte, error) {
	data := QRCodeData{
		ListingID: listingID.String(),
		Type:      listingQRType,
	}
	if s.baseURL != "" {
		data.Link = fmt.Sprintf("%s/listings/%s", s.baseURL, listingID)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR code data: %w", err)
	}

	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParseListingQR parses scanned QR payload and returns the listing ID
func (s *qrcodeService) ParseListingQR(qrData string) (uuid.UUID, error) {
	var data QRCodeData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return uuid.Nil, fmt.Errorf("failed to unmarshal QR code data: %w", err)
	}

	if data.Type != listingQRType {
		return uuid.Nil, fmt.Errorf("invalid QR code type: %s", data.Type)
	}

	listingID, err := uuid.Parse(data.ListingID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse listing ID: %w", err)
	}

	return listingID, nil
}
