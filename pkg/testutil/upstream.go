package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

// RecordedRequest is what a FakeUpstream saw for one call.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	Header http.Header
}

// FakeUpstream is an httptest server that answers every request with a
// canned status and JSON body and records what it received.
type FakeUpstream struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	delay    time.Duration
	requests []RecordedRequest
}

// NewFakeUpstream starts a server answering with status and body.
// The server is closed when the test finishes.
func NewFakeUpstream(t testing.TB, status int, body string) *FakeUpstream {
	t.Helper()

	f := &FakeUpstream{status: status, body: body}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Form:   r.PostForm,
		Header: r.Header.Clone(),
	})
	status, body, delay := f.status, f.body, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// SetResponse changes the canned answer for subsequent requests.
func (f *FakeUpstream) SetResponse(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.body = body
}

// SetDelay makes the server wait before answering.
func (f *FakeUpstream) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// Calls returns the number of requests received so far.
func (f *FakeUpstream) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// LastRequest returns the most recent request. It panics if none was received.
func (f *FakeUpstream) LastRequest() RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}
