package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/common"

	"github.com/satonic/satonic-storefront/internal/models"
)

// ErrInvalidRoyaltySplits is returned when split royalties cannot be paid out
var ErrInvalidRoyaltySplits = errors.New("invalid royalty splits")

// solanaKeySize is the length of a decoded Solana public key
const solanaKeySize = 32

// WalletService validates payout addresses
type WalletService struct{}

// NewWalletService creates a new WalletService
func NewWalletService() *WalletService {
	return &WalletService{}
}

// IsAddressValid checks the address format for a chain. This is a format
// check only; no chain is queried.
func (s *WalletService) IsAddressValid(chain models.Blockchain, address string) bool {
	switch chain {
	case models.BlockchainEthereum, models.BlockchainPolygon:
		return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
	case models.BlockchainSolana:
		// Decode returns an empty slice for characters outside the alphabet
		return len(base58.Decode(address)) == solanaKeySize
	default:
		return false
	}
}

// ValidateRoyaltySplits checks that every recipient has a valid address
// and a positive share, and that the shares add up to 100
func (s *WalletService) ValidateRoyaltySplits(chain models.Blockchain, splits []models.RoyaltySplit) error {
	if len(splits) == 0 {
		return fmt.Errorf("%w: no recipients", ErrInvalidRoyaltySplits)
	}

	seen := make(map[string]bool, len(splits))
	total := 0.0
	for i, split := range splits {
		address := strings.TrimSpace(split.Address)
		if !s.IsAddressValid(chain, address) {
			return fmt.Errorf("%w: recipient %d has an invalid %s address", ErrInvalidRoyaltySplits, i+1, chain)
		}
		key := strings.ToLower(address)
		if seen[key] {
			return fmt.Errorf("%w: recipient %d is listed twice", ErrInvalidRoyaltySplits, i+1)
		}
		seen[key] = true
		if split.Percentage <= 0 {
			return fmt.Errorf("%w: recipient %d has no share", ErrInvalidRoyaltySplits, i+1)
		}
		total += split.Percentage
	}

	if math.Abs(total-100) > 0.01 {
		return fmt.Errorf("%w: shares add up to %.2f%%, want 100%%", ErrInvalidRoyaltySplits, total)
	}
	return nil
}
