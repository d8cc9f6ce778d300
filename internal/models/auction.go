package models

import (
	"time"
)

// AuctionStatus represents the status of an auction
type AuctionStatus string

const (
	AuctionStatusDraft     AuctionStatus = "draft"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusCompleted AuctionStatus = "completed"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// Auction represents the timed auction attached to a newly created item
type Auction struct {
	ID           string        `json:"id" db:"id"`
	NFTID        string        `json:"nft_id" db:"nft_id"`
	StartPrice   float64       `json:"start_price" db:"start_price"`
	ReservePrice *float64      `json:"reserve_price,omitempty" db:"reserve_price"`
	Currency     string        `json:"currency" db:"currency"`
	DurationDays int           `json:"duration_days" db:"duration_days"`
	StartTime    time.Time     `json:"start_time" db:"start_time"`
	EndTime      time.Time     `json:"end_time" db:"end_time"`
	Status       AuctionStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}
