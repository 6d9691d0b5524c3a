package port

import "github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"

// TokenCodec signs principals into bearer tokens and verifies them back.
type TokenCodec interface {
	Encode(principal domain.Principal) (string, error)
	Decode(token string) (*domain.Principal, error)
}
