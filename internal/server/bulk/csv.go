// Package bulk reads and writes the CSV interchange format for an auction's
// bids: one line per bidder, fields separated by ';', the name first and
// then the amounts for rounds 1, 2, 3 and so on. An empty field means no bid
// for that round. A line with a name only registers the bidder.
package bulk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
)

const separator = ';'

// Read parses CSV rows into bid rows for auctionID, stamped with now. Every
// bidder gets a registration row so that bidders without amounts survive.
func Read(r io.Reader, auctionID int64, now time.Time) ([]*models.Bid, error) {
	cr := csv.NewReader(r)
	cr.Comma = separator
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	seen := make(map[string]bool)
	var result []*models.Bid
	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", common.ErrorValidation, line, err)
		}
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}

		name := strings.TrimSpace(record[0])
		if err := models.ValidateName(name); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: line %d: bidder %q listed twice", common.ErrorValidation, line, name)
		}
		seen[name] = true

		result = append(result, &models.Bid{
			AuctionID: auctionID,
			Name:      name,
			Round:     models.RegistrationRound,
			Time:      now,
		})
		for i, field := range record[1:] {
			if strings.TrimSpace(field) == "" {
				continue
			}
			amount, err := models.ParseAmount(field)
			if err != nil {
				return nil, fmt.Errorf("line %d, round %d: %w", line, i+1, err)
			}
			result = append(result, &models.Bid{
				AuctionID: auctionID,
				Name:      name,
				Round:     i + 1,
				Amount:    amount,
				Time:      now,
			})
		}
	}
	return result, nil
}

// Write renders bid rows as CSV, bidders sorted by name. Rounds without an
// explicit bid are left empty; carried values are not materialised.
func Write(w io.Writer, bids []*models.Bid) error {
	amounts := make(map[string]map[int]string)
	for _, b := range bids {
		rounds, ok := amounts[b.Name]
		if !ok {
			rounds = make(map[int]string)
			amounts[b.Name] = rounds
		}
		if b.Round < 1 {
			continue
		}
		rounds[b.Round] = b.Amount.String()
	}

	names := make([]string, 0, len(amounts))
	for name := range amounts {
		names = append(names, name)
	}
	sort.Strings(names)

	cw := csv.NewWriter(w)
	cw.Comma = separator
	for _, name := range names {
		last := 0
		for r := range amounts[name] {
			last = max(last, r)
		}
		record := make([]string, last+1)
		record[0] = name
		for r := 1; r <= last; r++ {
			record[r] = amounts[name][r]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
