// Package auth issues and checks the per-listing action tokens that guard
// scrape requests.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Actions a token can be issued for.
const (
	ActionScrapeInsights   = "scrape_insights"
	ActionScrapeAllSources = "scrape_all_sources"
)

// nonceLen is the number of hex characters kept from the MAC.
const nonceLen = 20

// ListingAction scopes a token to one action on one listing.
func ListingAction(action string, listingID int64) string {
	return fmt.Sprintf("gpd_%s_nonce_%d", action, listingID)
}

// Nonces signs tokens bound to an action and the caller identity.
//
// Time is split into ticks of lifetime/2; a token verifies during the tick
// it was issued in and the one after it.
type Nonces struct {
	secret   []byte
	halfLife time.Duration
	now      func() time.Time
}

// NewNonces creates a token issuer. A non-positive lifetime means 24h.
func NewNonces(secret string, lifetime time.Duration) *Nonces {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &Nonces{
		secret:   []byte(secret),
		halfLife: lifetime / 2,
		now:      time.Now,
	}
}

// Create returns a token for action on behalf of identity.
func (n *Nonces) Create(action, identity string) string {
	return n.sign(n.tick(), action, identity)
}

// Verify reports whether token is current for action and identity.
func (n *Nonces) Verify(token, action, identity string) bool {
	if len(token) != nonceLen {
		return false
	}
	t := n.tick()
	for _, tick := range []int64{t, t - 1} {
		if hmac.Equal([]byte(token), []byte(n.sign(tick, action, identity))) {
			return true
		}
	}
	return false
}

func (n *Nonces) tick() int64 {
	return n.now().UnixNano()/int64(n.halfLife) + 1
}

func (n *Nonces) sign(tick int64, action, identity string) string {
	mac := hmac.New(sha256.New, n.secret)
	mac.Write([]byte(strconv.FormatInt(tick, 10)))
	mac.Write([]byte{'|'})
	mac.Write([]byte(action))
	mac.Write([]byte{'|'})
	mac.Write([]byte(identity))
	return hex.EncodeToString(mac.Sum(nil))[:nonceLen]
}
