package bids

import (
	"context"

	"github.com/dmitrijs2005/crowdbid/internal/server/models"
)

// ReplaceAll drops every row of the auction and stores rows instead. It is
// only atomic when r is bound to a transaction.
func ReplaceAll(ctx context.Context, r Repository, auctionID int64, rows []*models.Bid) error {
	if _, err := r.DeleteByAuction(ctx, auctionID); err != nil {
		return err
	}
	for _, b := range rows {
		b.AuctionID = auctionID
		if err := r.Put(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
