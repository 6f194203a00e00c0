package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/crowdbid/internal/common"
)

// Nudge is one live-update message for one auction. It carries no state;
// receivers reload the auction.
type Nudge struct {
	AuctionID int64
	Hint      string
}

// Encode renders n in the live-update wire format "A<auctionId>#<hint>".
func (n Nudge) Encode() string {
	return "A" + strconv.FormatInt(n.AuctionID, 10) + "#" + n.Hint
}

func (n Nudge) String() string {
	return n.Encode()
}

// For reports whether n concerns the given auction.
func (n Nudge) For(auctionID int64) bool {
	return n.AuctionID == auctionID
}

// DecodeNudge parses the wire format produced by Encode. The hint may
// contain any text, including further '#' characters.
func DecodeNudge(s string) (Nudge, error) {
	rest, ok := strings.CutPrefix(s, "A")
	if !ok {
		return Nudge{}, fmt.Errorf("%w: message %q lacks the auction prefix", common.ErrNotification, s)
	}
	id, hint, ok := strings.Cut(rest, "#")
	if !ok {
		return Nudge{}, fmt.Errorf("%w: message %q lacks a hint separator", common.ErrNotification, s)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return Nudge{}, fmt.Errorf("%w: message %q has a bad auction id", common.ErrNotification, s)
	}
	return Nudge{AuctionID: n, Hint: hint}, nil
}
