// Package session keeps one server-side record per issued access token, so a
// token can be revoked before its expiry and request handlers get an explicit
// session object instead of raw claims.
package session

import (
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
)

// Session is the authenticated caller as seen by services and entities.
type Session struct {
	SellerID string          `json:"seller_id"`
	UserID   string          `json:"user_id"`
	Role     enums.StaffRole `json:"role"`
}

// Can reports whether the session's role carries the permission.
func (s Session) Can(p enums.Permission) bool {
	return s.Role.Grants(p)
}
