package notify

// Hints carried by a nudge. Receivers never act on them beyond logging;
// they always reload the auction.
const (
	// Subscribed is sent to a new session alone, once it is on the topic.
	Subscribed     = "subscribed"
	BidSubmitted   = "bid submitted"
	BidderAdded    = "bidder added"
	BidderRenamed  = "bidder renamed"
	RoundClosed    = "round closed"
	PeekToggled    = "peek toggled"
	AuctionUpdated = "auction updated"
	AuctionDeleted = "auction deleted"
	BidsImported   = "bids imported"
)
