package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"nightlife-navigator/internal/constants"
	"nightlife-navigator/internal/models"
	errs "nightlife-navigator/pkg/errors"
)

// detailsResponse mirrors the Place Details JSON. Numeric fields are pointers
// because the provider omits them for places without ratings or prices.
type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		PlaceID          string   `json:"place_id"`
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Rating           *float64 `json:"rating"`
		UserRatingsTotal *int     `json:"user_ratings_total"`
		PriceLevel       *int     `json:"price_level"`
		Geometry         *struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		OpeningHours *struct {
			OpenNow *bool `json:"open_now"`
		} `json:"opening_hours"`
	} `json:"result"`
}

// FetchDetails loads the detail fields for a place. It returns (nil, nil)
// when the provider has no record for the id.
func (c *Client) FetchDetails(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, errs.NewValidation("places.FetchDetails", "place id is empty", nil)
	}

	var details *models.PlaceDetails
	err := c.call(ctx, "places.FetchDetails", func(ctx context.Context) error {
		resp, err := c.getDetails(ctx, placeID)
		if err != nil {
			return err
		}
		switch resp.Status {
		case "OK":
			details = toDetails(resp)
			return nil
		case "NOT_FOUND", "ZERO_RESULTS":
			return nil
		default:
			return fmt.Errorf("place details status %s: %s", resp.Status, resp.ErrorMessage)
		}
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (c *Client) getDetails(ctx context.Context, placeID string) (*detailsResponse, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", strings.Join(constants.PlaceDetailsFields, ","))
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/maps/api/place/details/json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("place details http %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out detailsResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode place details: %w", err)
	}
	return &out, nil
}

func toDetails(resp *detailsResponse) *models.PlaceDetails {
	r := resp.Result
	d := &models.PlaceDetails{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Rating:           r.Rating,
		UserRatingsTotal: r.UserRatingsTotal,
		PriceLevel:       r.PriceLevel,
	}
	if r.Geometry != nil {
		lat, lng := r.Geometry.Location.Lat, r.Geometry.Location.Lng
		d.Lat, d.Lng = &lat, &lng
	}
	if r.OpeningHours != nil {
		d.OpenNow = r.OpeningHours.OpenNow
	}
	return d
}
