package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(timeout time.Duration) *Client {
	return New(ClientConfig{
		Timeout:   timeout,
		Retries:   3,
		BaseDelay: 5 * time.Millisecond,
		MaxDelay:  20 * time.Millisecond,
	}, nil)
}

func TestGet_Retry(t *testing.T) {
	attempts := 0
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(200)
		if _, err := w.Write([]byte("success")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	body, err := testClient(time.Second).Get(context.Background(), svr.URL, nil)
	if err != nil {
		t.Fatalf("Expected success after retry, got error: %v", err)
	}
	if string(body) != "success" {
		t.Errorf("Expected 'success', got '%s'", string(body))
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestGet_ClientErrorNotRetried(t *testing.T) {
	attempts := 0
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer svr.Close()

	_, err := testClient(time.Second).Get(context.Background(), svr.URL, nil)
	if err == nil {
		t.Fatal("Expected error for 404")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for a 4xx, got %d", attempts)
	}
}

func TestGet_DefaultUserAgent(t *testing.T) {
	var ua string
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.WriteHeader(200)
	}))
	defer svr.Close()

	c := testClient(time.Second)
	if _, err := c.Get(context.Background(), svr.URL, nil); err != nil {
		t.Fatal(err)
	}
	if ua != defaultUserAgent {
		t.Errorf("Expected default UA %q, got %q", defaultUserAgent, ua)
	}

	if _, err := c.Get(context.Background(), svr.URL, map[string]string{"User-Agent": "custom/1.0"}); err != nil {
		t.Fatal(err)
	}
	if ua != "custom/1.0" {
		t.Errorf("Expected custom UA, got %q", ua)
	}
}

func TestGet_ContextCancelled(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer svr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := testClient(time.Second).Get(ctx, svr.URL, nil)
	if err == nil {
		t.Fatal("Expected error after context timeout")
	}
}
