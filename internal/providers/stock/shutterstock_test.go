package stock

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type captureTransport struct {
	status  int
	respond string
	lastReq *http.Request
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.lastReq = req
	status := c.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(c.respond)),
		Request:    req,
	}, nil
}

func TestSearchByCategory(t *testing.T) {
	ct := &captureTransport{respond: `{
		"data": [{
			"id": "123",
			"description": "Beach at sunset",
			"assets": {
				"preview": {"url": "https://img.example.com/preview.jpg"},
				"large_thumb": {"url": "https://img.example.com/thumb.jpg"}
			},
			"categories": [{"name": "Travel"}, {"name": ""}]
		}]
	}`}
	client := NewClient(Options{APIKey: "key", HTTPClient: &http.Client{Transport: ct}})

	images, err := client.SearchByCategory(context.Background(), "travel", 5)
	if err != nil {
		t.Fatalf("SearchByCategory() error = %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("len(images) = %d, want 1", len(images))
	}
	img := images[0]
	if img.ID != "123" || img.Description != "Beach at sunset" {
		t.Fatalf("image = %+v", img)
	}
	if img.PreviewURL != "https://img.example.com/preview.jpg" {
		t.Fatalf("preview = %q", img.PreviewURL)
	}
	if len(img.Categories) != 1 || img.Categories[0] != "Travel" {
		t.Fatalf("categories = %v", img.Categories)
	}

	q := ct.lastReq.URL.Query()
	if q.Get("query") != "travel" || q.Get("per_page") != "5" || q.Get("sort") != "popular" {
		t.Fatalf("query = %v", q)
	}
	if got := ct.lastReq.Header.Get("Authorization"); got != "Bearer key" {
		t.Fatalf("Authorization = %q", got)
	}
}

func TestSearchByCategoryWithoutKey(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.SearchByCategory(context.Background(), "travel", 5)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestSearchByCategoryUpstreamError(t *testing.T) {
	ct := &captureTransport{status: http.StatusUnauthorized, respond: `{"message":"bad token"}`}
	client := NewClient(Options{APIKey: "key", HTTPClient: &http.Client{Transport: ct}})
	if _, err := client.SearchByCategory(context.Background(), "travel", 5); err == nil {
		t.Fatal("SearchByCategory() succeeded, want error")
	}
}
