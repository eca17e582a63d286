package service

import (
	"context"
)

// Market event types carried in MarketEvent.Type.
const (
	EventBidPlaced    = "bid.placed"
	EventOtpRequested = "otp.requested"
)

// MarketEvent represents a marketplace event to be processed by the worker
// binary. Bid-placed events fan out to push notifications; otp-requested
// events are handed to the SMS gateway.
type MarketEvent struct {
	RequestID string  `json:"request_id,omitempty"` // For distributed tracing
	Type      string  `json:"type"`
	ListingID string  `json:"listing_id,omitempty"`
	BidID     string  `json:"bid_id,omitempty"`
	FarmerID  string  `json:"farmer_id,omitempty"`
	BuyerID   string  `json:"buyer_id,omitempty"`
	BuyerName string  `json:"buyer_name,omitempty"`
	Crop      string  `json:"crop,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Phone     string  `json:"phone,omitempty"` // otp.requested only
	SmsBody   string  `json:"sms_body,omitempty"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishMarketEvent publishes a marketplace event for async processing
	PublishMarketEvent(ctx context.Context, event *MarketEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
