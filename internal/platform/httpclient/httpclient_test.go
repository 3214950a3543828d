package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoJSON_SendsHeadersAndDecodes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "k" || r.Header.Get("X-Extra") != "1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["v"]})
	}))
	defer ts.Close()

	c, err := New(ts.URL+"/", 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Headers["X-Api-Key"] = "k"

	var out struct {
		Echo string `json:"echo"`
	}
	err = c.PostJSON(context.Background(), "echo", map[string]string{"X-Extra": "1"}, map[string]string{"v": "hi"}, &out)
	if err != nil {
		t.Fatalf("PostJSON error: %v", err)
	}
	if out.Echo != "hi" {
		t.Fatalf("expected echo hi, got %q", out.Echo)
	}
}

func TestDoJSON_Non2xxReturnsHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer ts.Close()

	c, _ := New(ts.URL, 0)
	err := c.GetJSON(context.Background(), "/x", nil)
	if StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}

func TestResolveURL_RelativeNeedsBase(t *testing.T) {
	c, _ := New("", 0)
	if err := c.GetJSON(context.Background(), "/x", nil); err == nil {
		t.Fatalf("expected error without BaseURL")
	}
	if _, err := New("::bad", 0); err == nil {
		t.Fatalf("expected invalid base url error")
	}
}
