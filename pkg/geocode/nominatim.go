// Package geocode turns raw GPS coordinates into human-readable place
// descriptions. Lookups go to a rate-limited external provider and are
// memoized on disk so repeated runs over the same library do not re-query it.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/paulmach/orb"

	"snapsort/pkg/model"
	"snapsort/pkg/request"
	"snapsort/pkg/version"
)

// ProviderName identifies the external geocoding provider in stats and logs.
const ProviderName = "nominatim"

// Provider resolves a coordinate to a place description.
// A nil place with a nil error means the provider had no result.
type Provider interface {
	Reverse(ctx context.Context, pt orb.Point) (*model.Place, error)
}

// Nominatim is a reverse-geocoding client for the OSM Nominatim API.
type Nominatim struct {
	request  *request.Client
	endpoint string
	email    string
	language string
}

// NewNominatim creates a new Nominatim provider. The email is passed along to
// the provider per its usage policy; empty is allowed for local instances.
func NewNominatim(r *request.Client, endpoint, email, language string) *Nominatim {
	return &Nominatim{
		request:  r,
		endpoint: endpoint,
		email:    email,
		language: language,
	}
}

type reverseResponse struct {
	Error       string        `json:"error"`
	DisplayName string        `json:"display_name"`
	Address     model.Address `json:"address"`
}

// Reverse looks up the place at the given coordinate.
func (n *Nominatim) Reverse(ctx context.Context, pt orb.Point) (*model.Place, error) {
	u, err := url.Parse(n.endpoint + "/reverse")
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	q := u.Query()
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(pt.Lat(), 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(pt.Lon(), 'f', -1, 64))
	q.Set("addressdetails", "1")
	if n.email != "" {
		q.Set("email", n.email)
	}
	u.RawQuery = q.Encode()

	headers := map[string]string{
		"User-Agent": n.userAgent(),
	}
	if n.language != "" {
		headers["Accept-Language"] = n.language
	}

	body, err := n.request.Get(ctx, u.String(), headers)
	if err != nil {
		return nil, err
	}

	var resp reverseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}

	// Nominatim reports "Unable to geocode" as a 200 with an error field
	if resp.Error != "" {
		return nil, nil
	}

	return &model.Place{
		DisplayName: resp.DisplayName,
		Address:     resp.Address,
	}, nil
}

func (n *Nominatim) userAgent() string {
	if n.email != "" {
		return fmt.Sprintf("snapsort/%s (%s)", version.Version, n.email)
	}
	return fmt.Sprintf("snapsort/%s", version.Version)
}
