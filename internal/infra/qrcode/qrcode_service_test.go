package qrcode

import (
	"encoding/json"
	"testing"

	"agriconnect/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		errorCorrectionLevel string
	}{
		{"Low error correction", "L"},
		{"Medium error correction", "M"},
		{"High error correction", "Q"},
		{"Highest error correction", "H"},
		{"Default error correction", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewQRCodeService(&config.QRCodeConfig{
				Size:                 256,
				ErrorCorrectionLevel: tt.errorCorrectionLevel,
			})
			assert.NotNil(t, svc)
		})
	}
}

func TestQRCodeService_GenerateListingQR(t *testing.T) {
	svc := NewQRCodeService(&config.QRCodeConfig{Size: 256, ErrorCorrectionLevel: "M"})
	listingID := uuid.New()

	qrBytes, err := svc.GenerateListingQR(listingID)
	require.NoError(t, err)
	assert.NotEmpty(t, qrBytes)

	// Verify it's a valid PNG (starts with PNG magic number)
	assert.Equal(t, byte(0x89), qrBytes[0])
	assert.Equal(t, byte(0x50), qrBytes[1])
	assert.Equal(t, byte(0x4E), qrBytes[2])
	assert.Equal(t, byte(0x47), qrBytes[3])
}

func TestQRCodeService_GenerateListingQR_NilConfigDefaults(t *testing.T) {
	svc := NewQRCodeService(nil)

	qrBytes, err := svc.GenerateListingQR(uuid.New())
	require.NoError(t, err)
	assert.NotEmpty(t, qrBytes)
}

func TestQRCodeService_ParseListingQR(t *testing.T) {
	svc := NewQRCodeService(&config.QRCodeConfig{Size: 256, ErrorCorrectionLevel: "M"})
	listingID := uuid.New()

	data := QRCodeData{
		ListingID: listingID.String(),
		Type:      "listing",
	}
	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	parsedID, err := svc.ParseListingQR(string(jsonData))
	require.NoError(t, err)
	assert.Equal(t, listingID, parsedID)
}

func TestQRCodeService_ParseListingQR_InvalidJSON(t *testing.T) {
	svc := NewQRCodeService(&config.QRCodeConfig{Size: 256, ErrorCorrectionLevel: "M"})

	_, err := svc.ParseListingQR("invalid json")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal QR code data")
}

func TestQRCodeService_ParseListingQR_InvalidType(t *testing.T) {
	svc := NewQRCodeService(&config.QRCodeConfig{Size: 256, ErrorCorrectionLevel: "M"})

	data := QRCodeData{
		ListingID: uuid.New().String(),
		Type:      "coupon",
	}
	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	_, err = svc.ParseListingQR(string(jsonData))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid QR code type")
}

func TestQRCodeService_ParseListingQR_InvalidUUID(t *testing.T) {
	svc := NewQRCodeService(&config.QRCodeConfig{Size: 256, ErrorCorrectionLevel: "M"})

	data := QRCodeData{
		ListingID: "not-a-valid-uuid",
		Type:      "listing",
	}
	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	_, err = svc.ParseListingQR(string(jsonData))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse listing ID")
}

func TestQRCodeService_ShareLinkIncluded(t *testing.T) {
	svc := NewQRCodeService(&config.QRCodeConfig{
		Size:                 256,
		ErrorCorrectionLevel: "M",
		BaseURL:              "https://agriconnect.example/",
	})
	listingID := uuid.New()

	data := QRCodeData{
		ListingID: listingID.String(),
		Type:      "listing",
		Link:      "https://agriconnect.example/listings/" + listingID.String(),
	}
	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	parsedID, err := svc.ParseListingQR(string(jsonData))
	require.NoError(t, err)
	assert.Equal(t, listingID, parsedID)
}
