// README: Handler tests; error mapping and request validation against in-memory services.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamly/internal/ai"
	"roamly/internal/http/handlers"
	"roamly/internal/http/middleware"
	"roamly/internal/modules/chat"
	"roamly/internal/modules/itinerary"
	"roamly/internal/modules/quota"
	"roamly/internal/types"
)

const tripJSON = `{"tripTitle":"Lisbon Light","destination":"Lisbon","duration":"1 Day","summary":"Trams and tarts.",
"days":[{"dayNumber":1,"theme":"Alfama","activities":[{"time":"10:00 AM","activity":"Tram 28","description":"Ride","location":"Alfama","type":"Sightseeing","costEstimate":1}]}],
"estimatedBudget":[{"category":"Food","percentage":50}]}`

type stubGenerator struct {
	text string
	err  error
}

func (g *stubGenerator) GenerateItinerary(context.Context, string) (string, error) {
	return g.text, g.err
}

type memoryStore struct {
	mu    sync.Mutex
	items map[string]*itinerary.TripItinerary
}

func (m *memoryStore) Save(_ context.Context, owner string, it *itinerary.TripItinerary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[owner] = it
	return nil
}

func (m *memoryStore) Get(_ context.Context, owner string) (*itinerary.TripItinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[owner]; ok {
		return it, nil
	}
	return nil, itinerary.ErrNotFound
}

func (m *memoryStore) Delete(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, owner)
	return nil
}

type stubChatProvider struct {
	mu    sync.Mutex
	opts  []ai.ChatOptions
	reply *ai.ChatReply
	err   error
}

func (p *stubChatProvider) StartChat(_ context.Context, opts ai.ChatOptions) (ai.ChatSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts = append(p.opts, opts)
	return p, nil
}

func (p *stubChatProvider) SendMessage(context.Context, string) (*ai.ChatReply, error) {
	return p.reply, p.err
}

type stubQuota struct {
	err   error
	calls int
}

func (q *stubQuota) UseToken(context.Context, string) error {
	q.calls++
	return q.err
}

type stubGeocoder struct {
	coords types.Coordinates
	err    error
}

func (g *stubGeocoder) Geocode(context.Context, string) (types.Coordinates, error) {
	return g.coords, g.err
}

type fixture struct {
	router   *gin.Engine
	gen      *stubGenerator
	provider *stubChatProvider
	quota    *stubQuota
	geocoder *stubGeocoder
	manager  *chat.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		gen:      &stubGenerator{text: tripJSON},
		provider: &stubChatProvider{reply: &ai.ChatReply{Text: "Hello!"}},
		quota:    &stubQuota{},
		geocoder: &stubGeocoder{coords: types.Coordinates{Latitude: 38.71, Longitude: -9.14}},
	}
	store := &memoryStore{items: map[string]*itinerary.TripItinerary{}}
	itSvc := itinerary.NewService(f.gen, store, zerolog.Nop())
	f.manager = chat.NewManager(f.provider, time.Minute, zerolog.Nop())

	r := gin.New()
	r.Use(middleware.Auth(nil))
	ih := handlers.NewItineraryHandler(itSvc, f.quota, 5*time.Second)
	r.POST("/api/itineraries", ih.Generate)
	r.GET("/api/itineraries/current", ih.Current)
	r.DELETE("/api/itineraries/current", ih.Discard)

	ch := handlers.NewChatHandler(f.manager, f.quota, f.geocoder, 5*time.Second, zerolog.Nop())
	r.POST("/api/chat/sessions", ch.OpenSession)
	r.PUT("/api/chat/sessions/:id", ch.ReinitializeSession)
	r.DELETE("/api/chat/sessions/:id", ch.CloseSession)
	r.POST("/api/chat/messages", ch.Send)

	f.router = r
	return f
}

func (f *fixture) do(method, path string, body any, client string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if client != "" {
		req.Header.Set(middleware.ClientIDHeader, client)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestGenerate_Success(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/itineraries", map[string]string{"prompt": "A day in Lisbon"}, "c1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	it := decode[itinerary.TripItinerary](t, w)
	assert.Equal(t, "Lisbon", it.Destination)
	assert.Equal(t, 1, f.quota.calls)

	w = f.do(http.MethodGet, "/api/itineraries/current", nil, "c1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lisbon Light", decode[itinerary.TripItinerary](t, w).TripTitle)

	w = f.do(http.MethodGet, "/api/itineraries/current", nil, "c2")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/api/itineraries", map[string]string{"prompt": "   "}, "c1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, f.quota.calls, "empty prompts must not be metered")
}

func TestGenerate_InvalidJSONBody(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/itineraries", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_ProviderFailure(t *testing.T) {
	f := newFixture(t)
	f.gen.err = errors.New("quota exceeded upstream")

	w := f.do(http.MethodPost, "/api/itineraries", map[string]string{"prompt": "Rome"}, "c1")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, handlers.MsgGenerationFailed, decode[map[string]string](t, w)["error"])
}

func TestGenerate_MalformedPayload(t *testing.T) {
	f := newFixture(t)
	f.gen.text = "not json at all"

	w := f.do(http.MethodPost, "/api/itineraries", map[string]string{"prompt": "Rome"}, "c1")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGenerate_QuotaExhausted(t *testing.T) {
	f := newFixture(t)
	f.quota.err = quota.ErrInsufficientTokens

	w := f.do(http.MethodPost, "/api/itineraries", map[string]string{"prompt": "Rome"}, "c1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = f.do(http.MethodPost, "/api/chat/messages", map[string]string{"message": "hi"}, "c1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestGenerate_QuotaBackendError(t *testing.T) {
	f := newFixture(t)
	f.quota.err = errors.New("db down")

	w := f.do(http.MethodPost, "/api/itineraries", map[string]string{"prompt": "Rome"}, "c1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDiscard(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/itineraries", map[string]string{"prompt": "Lisbon"}, "c1").Code)

	w := f.do(http.MethodDelete, "/api/itineraries/current", nil, "c1")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/itineraries/current", nil, "c1").Code)
}

func TestOpenSession_WithCoordinates(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/chat/sessions", map[string]float64{"latitude": 48.8584, "longitude": 2.2945}, "c1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[map[string]any](t, w)
	assert.NotEmpty(t, resp["session_id"])
	assert.Equal(t, true, resp["grounded"])

	require.Len(t, f.provider.opts, 1)
	require.NotNil(t, f.provider.opts[0].LatLng)
	assert.Equal(t, 48.8584, f.provider.opts[0].LatLng.Latitude)
}

func TestOpenSession_NoBody(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/api/chat/sessions", nil, "c1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, false, decode[map[string]any](t, w)["grounded"])
}

func TestOpenSession_InvalidCoordinates(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/chat/sessions", map[string]float64{"latitude": 123, "longitude": 0}, "c1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/chat/sessions", map[string]float64{"latitude": 10}, "c1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.provider.opts)
}

func TestOpenSession_Address(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/chat/sessions", map[string]string{"address": "Lisbon"}, "c1")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["grounded"])

	f.geocoder.err = errors.New("ZERO_RESULTS")
	w = f.do(http.MethodPost, "/api/chat/sessions", map[string]string{"address": "Atlantis"}, "c1")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["grounded"], "geocoding failure degrades to unbiased")
}

func TestSend_Flow(t *testing.T) {
	f := newFixture(t)
	f.provider.reply = &ai.ChatReply{
		Text: "The Eiffel Tower is right there.",
		GroundingChunks: []ai.GroundingChunk{
			{Maps: &ai.MapsSource{URI: "https://maps/1", Title: "Eiffel Tower"}},
			{Maps: &ai.MapsSource{Title: "no link"}},
		},
	}

	open := decode[map[string]any](t, f.do(http.MethodPost, "/api/chat/sessions", nil, "c1"))
	id := open["session_id"].(string)

	w := f.do(http.MethodPost, "/api/chat/messages", map[string]string{"session_id": id, "message": "What's nearby?"}, "c1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		SessionID string           `json:"session_id"`
		Message   chat.ChatMessage `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.SessionID)
	assert.Equal(t, chat.RoleModel, resp.Message.Role)
	assert.Equal(t, []chat.GroundingLink{{Title: "Eiffel Tower", URI: "https://maps/1", Source: "Google Maps"}}, resp.Message.GroundingLinks)
}

func TestSend_WithoutSessionStartsOne(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/chat/messages", map[string]string{"message": "hi"}, "c1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[map[string]any](t, w)["session_id"])
	assert.Equal(t, 1, f.manager.Len())
}

func TestSend_EmptyMessage(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/api/chat/messages", map[string]string{"message": " "}, "c1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, f.quota.calls)
}

func TestSend_ProviderFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.err = errors.New("connection reset")

	w := f.do(http.MethodPost, "/api/chat/messages", map[string]string{"message": "hi"}, "c1")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Sorry, I'm having trouble connecting to the map right now. Please try again.",
		decode[map[string]string](t, w)["error"])
}

func TestSession_ForeignCaller(t *testing.T) {
	f := newFixture(t)
	id := decode[map[string]any](t, f.do(http.MethodPost, "/api/chat/sessions", nil, "alice"))["session_id"].(string)

	w := f.do(http.MethodPost, "/api/chat/messages", map[string]string{"session_id": id, "message": "hi"}, "bob")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPut, "/api/chat/sessions/"+id, nil, "bob")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodDelete, "/api/chat/sessions/"+id, nil, "bob")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSession_ReinitializeAndClose(t *testing.T) {
	f := newFixture(t)
	id := decode[map[string]any](t, f.do(http.MethodPost, "/api/chat/sessions",
		map[string]float64{"latitude": 1, "longitude": 2}, "c1"))["session_id"].(string)

	w := f.do(http.MethodPut, "/api/chat/sessions/"+id, nil, "c1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["grounded"])
	require.Len(t, f.provider.opts, 2)
	assert.Nil(t, f.provider.opts[1].LatLng)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/chat/sessions/"+id, nil, "c1").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/chat/sessions/"+id, nil, "c1").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPut, fmt.Sprintf("/api/chat/sessions/%s", id), nil, "c1").Code)
}
