package places

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"nightlife-navigator/internal/constants"
	"nightlife-navigator/pkg/config"
	errs "nightlife-navigator/pkg/errors"
	"nightlife-navigator/pkg/logging"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(config.PlacesConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		RPS:       100,
		Timeout:   2 * time.Second,
		PlaceType: "bar",
	}, logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestSearchText_PreservesProviderOrder(t *testing.T) {
	var gotQuery, gotType string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/place/textsearch/json" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("query")
		gotType = r.URL.Query().Get("type")
		fmt.Fprint(w, `{"status":"OK","results":[
			{"place_id":"P1","name":"Sudwerk Brewing","formatted_address":"2001 2nd St, Davis, CA"},
			{"place_id":"P2","name":"Sudwerk Taproom","formatted_address":"Elsewhere"}]}`)
	}))

	got, err := c.SearchText(context.Background(), "Sudwerk Davis, CA")
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(got) != 2 || got[0].PlaceID != "P1" || got[1].PlaceID != "P2" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
	if gotQuery != "Sudwerk Davis, CA" || gotType != "bar" {
		t.Fatalf("unexpected request query=%q type=%q", gotQuery, gotType)
	}
}

func TestSearchText_ZeroResultsIsEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	}))
	got, err := c.SearchText(context.Background(), "Nowhere Bar Davis, CA")
	if err != nil {
		t.Fatalf("zero results must not be an error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %+v", got)
	}
}

func TestSearchText_DeniedIsLookupUnavailable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid.","results":[]}`)
	}))
	_, err := c.SearchText(context.Background(), "Sudwerk Davis, CA")
	if !errs.IsLookupUnavailable(err) {
		t.Fatalf("expected lookup unavailable, got %v", err)
	}
}

func TestSearchBars_BuildsAreaQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		fmt.Fprint(w, `{"status":"OK","results":[{"place_id":"P1","name":"Froggy's"}]}`)
	}))
	got, err := c.SearchBars(context.Background(), "Davis, CA")
	if err != nil || len(got) != 1 {
		t.Fatalf("SearchBars: %v %+v", err, got)
	}
	if gotQuery != "bars in Davis, CA" {
		t.Fatalf("unexpected area query %q", gotQuery)
	}
	if _, err := c.SearchBars(context.Background(), " "); !errs.IsValidation(err) {
		t.Fatalf("empty location should be a validation error, got %v", err)
	}
}

func TestFetchDetails_DecodesPointerFields(t *testing.T) {
	var gotFields string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/place/details/json" {
			http.NotFound(w, r)
			return
		}
		gotFields = r.URL.Query().Get("fields")
		fmt.Fprint(w, `{"status":"OK","result":{"place_id":"P1","name":"Sudwerk","rating":4.4,
			"user_ratings_total":210,"price_level":2,"formatted_address":"2001 2nd St",
			"geometry":{"location":{"lat":38.55,"lng":-121.73}},"opening_hours":{"open_now":true}}}`)
	}))

	d, err := c.FetchDetails(context.Background(), "P1")
	if err != nil {
		t.Fatalf("FetchDetails: %v", err)
	}
	if d == nil || d.PlaceID != "P1" || *d.Rating != 4.4 || *d.UserRatingsTotal != 210 || *d.PriceLevel != 2 {
		t.Fatalf("unexpected details: %+v", d)
	}
	if d.Lat == nil || *d.Lat != 38.55 || d.OpenNow == nil || !*d.OpenNow {
		t.Fatalf("geometry/opening hours not decoded: %+v", d)
	}
	if gotFields != strings.Join(constants.PlaceDetailsFields, ",") {
		t.Fatalf("unexpected field mask %q", gotFields)
	}
}

func TestFetchDetails_AbsentFieldsStayNil(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","result":{"place_id":"P3","name":"New Spot","price_level":0}}`)
	}))
	d, err := c.FetchDetails(context.Background(), "P3")
	if err != nil {
		t.Fatalf("FetchDetails: %v", err)
	}
	if d.Rating != nil || d.UserRatingsTotal != nil {
		t.Fatalf("missing rating fields must be nil: %+v", d)
	}
	if d.PriceLevel == nil || *d.PriceLevel != 0 {
		t.Fatalf("explicit price level 0 must be kept, got %v", d.PriceLevel)
	}
}

func TestFetchDetails_MissingPlaceIDStaysEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","result":{"name":"No Id","rating":3.9}}`)
	}))
	d, err := c.FetchDetails(context.Background(), "P9")
	if err != nil {
		t.Fatalf("FetchDetails: %v", err)
	}
	if d.PlaceID != "" {
		t.Fatalf("place id must come from the response, got %q", d.PlaceID)
	}
}

func TestFetchDetails_NotFoundIsAbsent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"NOT_FOUND"}`)
	}))
	d, err := c.FetchDetails(context.Background(), "gone")
	if err != nil || d != nil {
		t.Fatalf("expected (nil, nil), got %v, %v", d, err)
	}
}

func TestFetchDetails_BreakerOpensOnRepeatedFailures(t *testing.T) {
	var hits int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "backend error", http.StatusBadGateway)
	}))

	for i := 0; i < constants.PlacesMaxConsecFailures+2; i++ {
		if _, err := c.FetchDetails(context.Background(), "P1"); !errs.IsLookupUnavailable(err) {
			t.Fatalf("call %d: expected lookup unavailable, got %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&hits); got != int32(constants.PlacesMaxConsecFailures) {
		t.Fatalf("open circuit should stop requests, server saw %d", got)
	}
}

func TestDisabledClient(t *testing.T) {
	c, err := New(config.PlacesConfig{}, logging.Discard())
	if err != nil {
		t.Fatalf("disabled client must construct: %v", err)
	}
	if c.Enabled() {
		t.Fatalf("client without key must be disabled")
	}
	if _, err := c.SearchText(context.Background(), "anything"); !errs.IsLookupUnavailable(err) {
		t.Fatalf("expected lookup unavailable, got %v", err)
	}
	if _, err := c.FetchDetails(context.Background(), "P1"); !errs.IsLookupUnavailable(err) {
		t.Fatalf("expected lookup unavailable, got %v", err)
	}
}

func TestNew_RejectsUnknownPlaceType(t *testing.T) {
	_, err := New(config.PlacesConfig{APIKey: "k", PlaceType: "speakeasy"}, logging.Discard())
	if !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
