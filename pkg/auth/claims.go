package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   string
	SellerID string
	Role     enums.StaffRole
	// JTI overrides the generated token id; leave empty outside tests.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to staff clients.
type AccessTokenClaims struct {
	UserID   string          `json:"user_id"`
	SellerID string          `json:"seller_id"`
	Role     enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}
