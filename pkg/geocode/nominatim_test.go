package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapsort/pkg/request"
)

func newTestNominatim(endpoint string) *Nominatim {
	r := request.New(request.ClientConfig{
		Timeout:   time.Second,
		Retries:   1,
		BaseDelay: time.Millisecond,
		MaxDelay:  time.Millisecond,
	}, nil)
	return NewNominatim(r, endpoint, "library@example.org", "en")
}

func TestNominatimReverse(t *testing.T) {
	var gotQuery map[string]string
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"format":         r.URL.Query().Get("format"),
			"lat":            r.URL.Query().Get("lat"),
			"lon":            r.URL.Query().Get("lon"),
			"addressdetails": r.URL.Query().Get("addressdetails"),
			"email":          r.URL.Query().Get("email"),
			"accept":         r.Header.Get("Accept-Language"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"display_name": "Viscri, Brasov, Romania",
			"address": {
				"village": "Viscri",
				"county": "Brasov",
				"postcode": "507039",
				"country_code": "ro"
			}
		}`))
	}))
	defer svr.Close()

	place, err := newTestNominatim(svr.URL).Reverse(context.Background(), orb.Point{25.09, 46.06})
	require.NoError(t, err)
	require.NotNil(t, place)

	assert.Equal(t, "Viscri", place.Address.Village)
	assert.Equal(t, "Brasov", place.Address.County)
	assert.Equal(t, "507039", place.Address.Postcode)
	assert.Equal(t, "ro", place.Address.CountryCode)
	assert.Equal(t, "Viscri, Brasov, Romania", place.DisplayName)

	assert.Equal(t, "jsonv2", gotQuery["format"])
	assert.Equal(t, "46.06", gotQuery["lat"])
	assert.Equal(t, "25.09", gotQuery["lon"])
	assert.Equal(t, "1", gotQuery["addressdetails"])
	assert.Equal(t, "library@example.org", gotQuery["email"])
	assert.Equal(t, "en", gotQuery["accept"])
}

func TestNominatimReverseNoResult(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Nominatim answers 200 with an error field for open ocean etc.
		_, _ = w.Write([]byte(`{"error": "Unable to geocode"}`))
	}))
	defer svr.Close()

	place, err := newTestNominatim(svr.URL).Reverse(context.Background(), orb.Point{0, 0})
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestNominatimReverseServerError(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer svr.Close()

	_, err := newTestNominatim(svr.URL).Reverse(context.Background(), orb.Point{25.09, 46.06})
	assert.Error(t, err)
}

func TestNominatimReverseMalformedBody(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer svr.Close()

	_, err := newTestNominatim(svr.URL).Reverse(context.Background(), orb.Point{25.09, 46.06})
	assert.Error(t, err)
}
