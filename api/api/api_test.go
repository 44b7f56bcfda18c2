package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"newsapi/news"
)

type fixture struct {
	url   string
	store *fakeStore
}

func startAPI(ctx context.Context, t testing.TB) *fixture {
	t.Helper()

	store := newFakeStore()
	api := New(ctx, Options{
		Store: store,
	})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &fixture{
		url:   srv.URL,
		store: store,
	}
}

func (f *fixture) Get(t testing.TB, path string, out interface{}) (statusCode int) {
	t.Helper()
	return f.send(t, "GET", path, "", nil, out)
}

func (f *fixture) Post(t testing.TB, path string, body, out interface{}) (statusCode int) {
	t.Helper()
	return f.send(t, "POST", path, "application/json", jsonBody(t, body), out)
}

func (f *fixture) Put(t testing.TB, path string, body, out interface{}) (statusCode int) {
	t.Helper()
	return f.send(t, "PUT", path, "application/json", jsonBody(t, body), out)
}

func (f *fixture) Delete(t testing.TB, path string, out interface{}) (statusCode int) {
	t.Helper()
	return f.send(t, "DELETE", path, "", nil, out)
}

func (f *fixture) send(t testing.TB, method, path, contentType string, body []byte, out interface{}) int {
	t.Helper()

	req, err := http.NewRequest(method, f.url+path, bytes.NewReader(body))
	assert.Assert(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	assert.Assert(t, err)
	defer func() {
		assert.Check(t, resp.Body.Close())
	}()

	if out != nil {
		err = json.NewDecoder(resp.Body).Decode(out)
		assert.Assert(t, err)
	}
	return resp.StatusCode
}

func jsonBody(t testing.TB, body interface{}) []byte {
	t.Helper()
	buf, err := json.Marshal(body)
	assert.Assert(t, err)
	return buf
}

// fakeStore is an in-memory Store, so handler behaviour can be tested
// without a database.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]news.Item

	// err fails every operation when set, standing in for an unreachable
	// database.
	err error
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[int64]news.Item{}}
}

func (s *fakeStore) List(_ context.Context) ([]news.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	items := make([]news.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *fakeStore) Create(_ context.Context, toAdd news.ToAdd) (*news.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	item := news.Item{ID: s.nextID, Title: toAdd.Title, Content: toAdd.Content}
	s.items[item.ID] = item
	return &item, nil
}

func (s *fakeStore) Update(_ context.Context, id int64, patch news.Patch) (*news.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	item, ok := s.items[id]
	if !ok {
		return nil, news.ErrNotFound
	}
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Content != nil {
		item.Content = *patch.Content
	}
	s.items[id] = item
	return &item, nil
}

func (s *fakeStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.items[id]; !ok {
		return news.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *fakeStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *fakeStore) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
