package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sadamiak/doodle/internal/core"
	"github.com/sadamiak/doodle/internal/types"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   []byte
}

type stubServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newStubServer(t *testing.T, status int, body string) (*stubServer, *httptest.Server) {
	t.Helper()
	stub := &stubServer{status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		query := map[string]string{}
		for key := range r.URL.Query() {
			query[key] = r.URL.Query().Get(key)
		}
		stub.mu.Lock()
		stub.requests = append(stub.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  query,
			Header: r.Header.Clone(),
			Body:   data,
		})
		stub.mu.Unlock()
		w.WriteHeader(stub.status)
		_, _ = io.WriteString(w, stub.body)
	}))
	t.Cleanup(srv.Close)
	return stub, srv
}

func (s *stubServer) last(t *testing.T) recordedRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatalf("expected a request")
	}
	return s.requests[len(s.requests)-1]
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient(core.Config{BaseURL: baseURL, Token: "tok", PageSize: 25}, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestFetchPageDefaultsLimitAndSendsAuth(t *testing.T) {
	stub, srv := newStubServer(t, http.StatusOK, `[]`)
	client := newTestClient(t, srv.URL+"/")

	page, err := client.FetchPage(context.Background(), types.FetchParams{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(page) != 0 {
		t.Fatalf("expected empty page, got %d", len(page))
	}

	req := stub.last(t)
	if req.Method != http.MethodGet || req.Path != MessagesPath {
		t.Fatalf("unexpected request: %s %s", req.Method, req.Path)
	}
	if req.Query["limit"] != "25" {
		t.Fatalf("limit: got %q", req.Query["limit"])
	}
	if _, ok := req.Query["before"]; ok {
		t.Fatalf("before should be omitted")
	}
	if got := req.Header.Get("Authorization"); got != "Bearer tok" {
		t.Fatalf("authorization: got %q", got)
	}
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Fatalf("accept: got %q", got)
	}
}

func TestFetchPagePassesCursors(t *testing.T) {
	stub, srv := newStubServer(t, http.StatusOK, `{"messages":[]}`)
	client := newTestClient(t, srv.URL)

	_, err := client.FetchPage(context.Background(), types.FetchParams{
		Before: "2025-01-01T00:00:00.000Z",
		After:  "2024-12-31T00:00:00.000Z",
		Limit:  3,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	req := stub.last(t)
	if req.Query["before"] != "2025-01-01T00:00:00.000Z" {
		t.Fatalf("before: got %q", req.Query["before"])
	}
	if req.Query["after"] != "2024-12-31T00:00:00.000Z" {
		t.Fatalf("after: got %q", req.Query["after"])
	}
	if req.Query["limit"] != "3" {
		t.Fatalf("limit: got %q", req.Query["limit"])
	}
}

func TestFetchPageOmitsAuthWithoutToken(t *testing.T) {
	stub, srv := newStubServer(t, http.StatusOK, `[]`)
	client, err := NewClient(core.Config{BaseURL: srv.URL, PageSize: 5})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.FetchPage(context.Background(), types.FetchParams{}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := stub.last(t).Header.Get("Authorization"); got != "" {
		t.Fatalf("expected no authorization header, got %q", got)
	}
}

func TestFetchPageEnvelopes(t *testing.T) {
	cases := []struct {
		name string
		body string
		ids  []string
	}{
		{name: "array", body: `[{"_id":"a"},{"_id":"b"}]`, ids: []string{"a", "b"}},
		{name: "data", body: `{"data":[{"id":"a"}]}`, ids: []string{"a"}},
		{name: "messages", body: `{"messages":[{"_id":"a"},{"_id":"b"}]}`, ids: []string{"a", "b"}},
		{name: "single", body: `{"message":{"_id":"x","message":"hi"}}`, ids: []string{"x"}},
		{name: "unknown", body: `{"foo":1}`, ids: nil},
		{name: "empty", body: ``, ids: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, srv := newStubServer(t, http.StatusOK, tc.body)
			client := newTestClient(t, srv.URL)

			page, err := client.FetchPage(context.Background(), types.FetchParams{})
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if len(page) != len(tc.ids) {
				t.Fatalf("expected %d records, got %d", len(tc.ids), len(page))
			}
			for i, id := range tc.ids {
				if page[i].ID != id {
					t.Fatalf("record %d: got %q want %q", i, page[i].ID, id)
				}
			}
		})
	}
}

func TestFetchPageFailureStatus(t *testing.T) {
	_, srv := newStubServer(t, http.StatusInternalServerError, `boom`)
	client := newTestClient(t, srv.URL)

	page, err := client.FetchPage(context.Background(), types.FetchParams{})
	if page != nil {
		t.Fatalf("expected no records on failure")
	}
	var failure *FetchFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected FetchFailure, got %T %v", err, err)
	}
	if failure.Status != http.StatusInternalServerError {
		t.Fatalf("status: got %d", failure.Status)
	}
	if err.Error() != "unable to fetch messages (500)" {
		t.Fatalf("message: got %q", err.Error())
	}
}

func TestFetchPageInvalidJSON(t *testing.T) {
	_, srv := newStubServer(t, http.StatusOK, `{"messages":`)
	client := newTestClient(t, srv.URL)

	if _, err := client.FetchPage(context.Background(), types.FetchParams{}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFetchPageCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })
	client := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	page, err := client.FetchPage(ctx, types.FetchParams{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var transport *TransportFailure
	if errors.As(err, &transport) {
		t.Fatalf("cancellation should not be a transport failure")
	}
	if page != nil {
		t.Fatalf("expected no records")
	}
}

func TestFetchPageTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := newTestClient(t, url)
	_, err := client.FetchPage(context.Background(), types.FetchParams{})
	var transport *TransportFailure
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportFailure, got %T %v", err, err)
	}
	if transport.Op != "fetch" {
		t.Fatalf("op: got %q", transport.Op)
	}
}

func TestSendRecordPostsExactBody(t *testing.T) {
	stub, srv := newStubServer(t, http.StatusCreated, `{"_id":"m6","author":"Alice","message":"hi","createdAt":"2025-01-01T00:00:06.000Z"}`)
	client := newTestClient(t, srv.URL)

	record, err := client.SendRecord(context.Background(), types.SendInput{Author: "Alice", Body: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if record.ID != "m6" || record.Body != "hi" {
		t.Fatalf("unexpected record: %+v", record)
	}

	req := stub.last(t)
	if req.Method != http.MethodPost || req.Path != MessagesPath {
		t.Fatalf("unexpected request: %s %s", req.Method, req.Path)
	}
	var payload map[string]any
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(payload) != 2 || payload["author"] != "Alice" || payload["message"] != "hi" {
		t.Fatalf("unexpected payload: %s", req.Body)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type: got %q", got)
	}
}

func TestSendRecordUnwrapsEnvelope(t *testing.T) {
	_, srv := newStubServer(t, http.StatusOK, `{"message":{"_id":"x","author":"A","message":"hey"}}`)
	client := newTestClient(t, srv.URL)

	record, err := client.SendRecord(context.Background(), types.SendInput{Author: "A", Body: "hey"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if record.ID != "x" {
		t.Fatalf("id: got %q", record.ID)
	}
}

func TestSendRecordFabricatesWhenEmpty(t *testing.T) {
	_, srv := newStubServer(t, http.StatusNoContent, ``)
	now := time.Date(2025, 5, 5, 5, 5, 5, 0, time.UTC)
	client := newTestClient(t, srv.URL,
		WithClock(core.FixedClock(now)),
		WithIDGenerator(core.IDFunc(func() string { return "generated" })),
	)

	record, err := client.SendRecord(context.Background(), types.SendInput{Author: "Bob", Body: "yo"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	want := types.RawRecord{ID: "generated", Author: "Bob", Body: "yo", CreatedAt: "2025-05-05T05:05:05.000Z"}
	if record != want {
		t.Fatalf("got %+v want %+v", record, want)
	}
}

func TestSendRecordFailureMessages(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "text", body: "Bad Request", want: "Bad Request"},
		{name: "blank", body: "   ", want: DefaultSendError},
		{name: "json", body: `{"error":"message is required"}`, want: "message is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, srv := newStubServer(t, http.StatusBadRequest, tc.body)
			client := newTestClient(t, srv.URL)

			_, err := client.SendRecord(context.Background(), types.SendInput{Author: "A", Body: "x"})
			var failure *SendFailure
			if !errors.As(err, &failure) {
				t.Fatalf("expected SendFailure, got %T %v", err, err)
			}
			if failure.Status != http.StatusBadRequest {
				t.Fatalf("status: got %d", failure.Status)
			}
			if failure.Message != tc.want {
				t.Fatalf("message: got %q want %q", failure.Message, tc.want)
			}
		})
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	got, err := NormalizeBaseURL("  http://localhost:3000/// ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "http://localhost:3000" {
		t.Fatalf("got %q", got)
	}
	if _, err := NormalizeBaseURL("localhost:3000"); err == nil {
		t.Fatalf("expected error without scheme")
	}
	if _, err := NormalizeBaseURL(""); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
