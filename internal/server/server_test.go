package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/cartoonist/internal/config"
	"github.com/agenthands/cartoonist/internal/core"
	"github.com/agenthands/cartoonist/internal/core/concept"
	"github.com/agenthands/cartoonist/internal/core/location"
	"github.com/agenthands/cartoonist/internal/core/model"
	"github.com/agenthands/cartoonist/internal/core/news"
	"github.com/agenthands/cartoonist/internal/core/ratelimit"
	"github.com/agenthands/cartoonist/internal/core/render"
	"github.com/agenthands/cartoonist/internal/llm"
	"github.com/agenthands/cartoonist/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeIndex struct {
	results []store.Summary
	err     error
	place   string
	limit   int
}

func (f *fakeIndex) Recent(ctx context.Context, place string, limit int) ([]store.Summary, error) {
	f.place, f.limit = place, limit
	return f.results, f.err
}

type fixture struct {
	router   *gin.Engine
	server   *Server
	geocoder *location.MockGeocoder
	feed     *news.MockProvider
	store    *store.Disk
}

func newFixture(t *testing.T, limit int) *fixture {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	geocoder := &location.MockGeocoder{
		Coords: &model.Coordinates{Latitude: -37.8136, Longitude: 144.9631},
		Address: &location.RawAddress{
			DisplayName: "Melbourne, Victoria, Australia",
			Details:     map[string]string{"city": "Melbourne", "state": "Victoria", "country": "Australia", "country_code": "au"},
		},
	}
	feed := &news.MockProvider{}
	text := &llm.MockLLMClient{Err: errors.New("model offline")}
	images := &llm.MockImageClient{Image: llm.Image{Data: buf.Bytes(), MIMEType: "image/png"}}

	disk, err := store.NewDisk(t.TempDir())
	require.NoError(t, err)

	cartoonist := core.NewCartoonist(
		ratelimit.NewMemory(limit, 24*time.Hour),
		location.NewResolver(geocoder, nil, 0, nil),
		news.NewRetriever(feed, news.Options{}, nil),
		concept.NewSynthesizer(text, "", 0, nil),
		render.NewRenderer(nil, images, render.Options{}, nil),
		disk,
		nil,
	)
	srv := NewServer(cartoonist, disk, nil, []string{"http://localhost:3000"}, nil)
	return &fixture{router: srv.SetupRouter(), server: srv, geocoder: geocoder, feed: feed, store: disk}
}

func (f *fixture) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := newFixture(t, 2)
	w := f.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLocate(t *testing.T) {
	f := newFixture(t, 2)

	w := f.do(http.MethodPost, "/location", LocationRequest{Manual: "Melbourne"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Location model.Location `json:"location"`
		Display  string         `json:"display"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Melbourne", resp.Location.Address.City)
	assert.Equal(t, "Melbourne, Victoria, Australia", resp.Display)
}

func TestLocate_NotFound(t *testing.T) {
	f := newFixture(t, 2)
	f.geocoder.Coords = nil

	w := f.do(http.MethodPost, "/location", LocationRequest{Manual: "Atlantis"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), locationNotFoundMsg)
}

func TestCreateCartoon_RoundTrip(t *testing.T) {
	f := newFixture(t, 2)

	w := f.do(http.MethodPost, "/cartoons", CartoonRequest{ManualLocation: "Melbourne"}, map[string]string{SessionHeader: "s-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s-1", w.Header().Get(SessionHeader))

	var out core.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, core.StatusCompleted, out.Status)
	assert.Equal(t, model.NewsSynthetic, out.News.Provenance)
	assert.Equal(t, model.ConceptsFallback, out.Concepts.Mode)
	assert.Equal(t, model.GenerationRendered, out.Mode)
	require.NotEmpty(t, out.ArtifactRef)

	meta := f.do(http.MethodGet, "/cartoons/"+out.ArtifactRef, nil, nil)
	require.Equal(t, http.StatusOK, meta.Code)
	var got store.Metadata
	require.NoError(t, json.Unmarshal(meta.Body.Bytes(), &got))
	assert.Equal(t, "Melbourne, Australia", got.Location)

	img := f.do(http.MethodGet, "/cartoons/"+out.ArtifactRef+"/image", nil, nil)
	require.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "image/png", img.Header().Get("Content-Type"))
	assert.NotEmpty(t, img.Body.Bytes())
}

func TestCreateCartoon_GeneratesSessionID(t *testing.T) {
	f := newFixture(t, 2)

	w := f.do(http.MethodPost, "/cartoons", CartoonRequest{ManualLocation: "Melbourne"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(SessionHeader), 36)
}

func TestCreateCartoon_RateLimited(t *testing.T) {
	f := newFixture(t, 1)
	headers := map[string]string{SessionHeader: "s-2"}

	first := f.do(http.MethodPost, "/cartoons", CartoonRequest{ManualLocation: "Melbourne"}, headers)
	require.Equal(t, http.StatusOK, first.Code)

	second := f.do(http.MethodPost, "/cartoons", CartoonRequest{ManualLocation: "Melbourne"}, headers)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), `"rate_limited"`)

	// another session has its own quota
	other := f.do(http.MethodPost, "/cartoons", CartoonRequest{ManualLocation: "Melbourne"}, map[string]string{SessionHeader: "s-3"})
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestCreateCartoon_LocationNotFound(t *testing.T) {
	f := newFixture(t, 2)
	f.geocoder.Coords = nil

	w := f.do(http.MethodPost, "/cartoons", CartoonRequest{ManualLocation: "Atlantis"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), locationNotFoundMsg)
}

func TestCreateCartoon_ConfirmedPlaceSkipsGeocoder(t *testing.T) {
	f := newFixture(t, 2)

	w := f.do(http.MethodPost, "/cartoons", CartoonRequest{City: "Lyon", Country: "France"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.geocoder.ForwardCalls)
	assert.Empty(t, f.geocoder.ReverseCalls)
	require.Len(t, f.feed.Queries, 1)
	assert.Equal(t, "Lyon France", f.feed.Queries[0].Text)
}

func TestCreateCartoon_BadJSON(t *testing.T) {
	f := newFixture(t, 2)
	req := httptest.NewRequest(http.MethodPost, "/cartoons", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCartoon_NotFound(t *testing.T) {
	f := newFixture(t, 2)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/cartoons/Nowhere_20260101_000000_deadbeef", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/cartoons/Nowhere_20260101_000000_deadbeef/image", nil, nil).Code)
}

func TestListCartoons(t *testing.T) {
	f := newFixture(t, 2)

	w := f.do(http.MethodGet, "/cartoons?place=Melbourne,%20Australia", nil, nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	index := &fakeIndex{results: []store.Summary{{Ref: "Melbourne_Australia_20260301_093015_abcd1234", Title: "Tram Trouble"}}}
	f.server.Index = index

	w = f.do(http.MethodGet, "/cartoons?place=Melbourne,%20Australia&limit=3", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Tram Trouble")
	assert.Equal(t, "Melbourne, Australia", index.place)
	assert.Equal(t, 3, index.limit)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/cartoons", nil, nil).Code)

	index.err = errors.New("bolt down")
	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodGet, "/cartoons?place=x", nil, nil).Code)
}

func TestBuild(t *testing.T) {
	cfg := config.Default()
	cfg.LLM = config.LLMConfig{Provider: "openai", APIKey: "sk-test", Model: "gpt-4o-mini"}
	cfg.Image = config.LLMConfig{Provider: "claude"}
	cfg.News.Provider = "googlenews"
	cfg.Store.Dir = t.TempDir()

	app, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.Server)
	assert.Nil(t, app.Server.Index)
	assert.IsType(t, &ratelimit.Memory{}, app.Server.Cartoonist.Limiter)
	assert.Equal(t, 5, app.Server.Cartoonist.NewsCount)
}

func TestBuild_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.LLM = config.LLMConfig{Provider: "nope"}
	_, err := Build(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "init text model")

	cfg = config.Default()
	cfg.LLM = config.LLMConfig{Provider: "openai", APIKey: "sk-test"}
	cfg.News.Provider = "carrier-pigeon"
	cfg.Store.Dir = t.TempDir()
	_, err = Build(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "init news provider")
}
