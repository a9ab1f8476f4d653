package places

import (
	"context"
	"strings"

	"nightlife-navigator/internal/models"
	errs "nightlife-navigator/pkg/errors"
	"nightlife-navigator/pkg/logging"

	"googlemaps.github.io/maps"
)

// SearchText runs a free-text search restricted to the configured place
// type. Candidates keep the provider's order. No match is an empty slice.
func (c *Client) SearchText(ctx context.Context, query string) ([]models.PlaceCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errs.NewValidation("places.SearchText", "query is empty", nil)
	}

	var results []maps.PlacesSearchResult
	err := c.call(ctx, "places.SearchText", func(ctx context.Context) error {
		resp, err := c.maps.TextSearch(ctx, &maps.TextSearchRequest{
			Query: query,
			Type:  c.placeType,
		})
		if err != nil {
			if isZeroResults(err) {
				return nil
			}
			return err
		}
		results = resp.Results
		return nil
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]models.PlaceCandidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, models.PlaceCandidate{
			PlaceID:          r.PlaceID,
			Name:             r.Name,
			FormattedAddress: r.FormattedAddress,
		})
	}
	c.log.Debug("text search", logging.String("query", query), logging.Int("results", len(candidates)))
	return candidates, nil
}

// SearchBars lists bars in an area, e.g. "Davis, CA". Used for discovery,
// not by the sync loop.
func (c *Client) SearchBars(ctx context.Context, location string) ([]models.PlaceCandidate, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errs.NewValidation("places.SearchBars", "location is empty", nil)
	}
	return c.SearchText(ctx, "bars in "+location)
}

func isZeroResults(err error) bool {
	return err != nil && strings.Contains(err.Error(), "ZERO_RESULTS")
}
