package testutil

import (
	"context"
	"sync"

	"nightlife-navigator/internal/models"
)

// MockStore implements venuesync.VenueStore for tests.
type MockStore struct {
	Mu       sync.Mutex
	Venues   []models.Venue
	ListErr  error
	WriteErr map[string]error

	ListCalls int
	Writes    []Write
	Rows      map[string]models.EnrichmentFields
}

// Write is one recorded UpdateVenue call.
type Write struct {
	VenueID string
	Fields  models.EnrichmentFields
}

func NewMockStore(venues ...models.Venue) *MockStore {
	return &MockStore{Venues: venues, WriteErr: map[string]error{}, Rows: map[string]models.EnrichmentFields{}}
}

func (m *MockStore) ListVenues(ctx context.Context) ([]models.Venue, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.Venue, len(m.Venues))
	copy(out, m.Venues)
	return out, nil
}

func (m *MockStore) UpdateVenue(ctx context.Context, venueID string, f models.EnrichmentFields) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Writes = append(m.Writes, Write{VenueID: venueID, Fields: f})
	if err, ok := m.WriteErr[venueID]; ok {
		return err
	}
	m.Rows[venueID] = f
	return nil
}

// MockLookup implements venuesync.PlacesLookup for tests. Queries and place
// ids without a configured response behave as "no match" and "absent".
type MockLookup struct {
	Mu         sync.Mutex
	Search     map[string][]models.PlaceCandidate
	SearchErr  map[string]error
	Details    map[string]*models.PlaceDetails
	DetailsErr map[string]error

	Queries      []string
	DetailsCalls []string
	// OnSearch runs inside SearchText, before the response is chosen.
	OnSearch func(query string)
}

func NewMockLookup() *MockLookup {
	return &MockLookup{
		Search:     map[string][]models.PlaceCandidate{},
		SearchErr:  map[string]error{},
		Details:    map[string]*models.PlaceDetails{},
		DetailsErr: map[string]error{},
	}
}

func (m *MockLookup) SearchText(ctx context.Context, query string) ([]models.PlaceCandidate, error) {
	m.Mu.Lock()
	m.Queries = append(m.Queries, query)
	hook := m.OnSearch
	m.Mu.Unlock()
	if hook != nil {
		hook(query)
	}

	m.Mu.Lock()
	defer m.Mu.Unlock()
	if err, ok := m.SearchErr[query]; ok {
		return nil, err
	}
	return m.Search[query], nil
}

func (m *MockLookup) FetchDetails(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.DetailsCalls = append(m.DetailsCalls, placeID)
	if err, ok := m.DetailsErr[placeID]; ok {
		return nil, err
	}
	return m.Details[placeID], nil
}

// TotalCalls counts search and details requests.
func (m *MockLookup) TotalCalls() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return len(m.Queries) + len(m.DetailsCalls)
}

func Ptr[T any](v T) *T { return &v }
