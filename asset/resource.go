package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// A Resource wraps a scene description stream read from a local file or a
// remote http(s) location.
type Resource struct {
	io.ReadCloser
	location string
	remote   bool
}

// Returns the location of this resource.
func (r *Resource) Path() string {
	return r.location
}

// Returns true if the resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.remote
}

// Open a resource. Locations with an http or https scheme are fetched using
// the supplied client (http.DefaultClient if nil). Other locations containing
// a scheme separator are rejected; anything else is opened as a local file
// path verbatim.
//
// The caller must close the returned resource.
func Open(ctx context.Context, client *http.Client, location string) (*Resource, error) {
	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return openRemote(ctx, client, location)
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", location[:strings.Index(location, "://")])
	}

	f, err := os.Open(filepath.Clean(location))
	if err != nil {
		return nil, fmt.Errorf("resource: could not open %q: %w", location, err)
	}
	return &Resource{ReadCloser: f, location: location}, nil
}

func openRemote(ctx context.Context, client *http.Client, location string) (*Resource, error) {
	loc, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("resource: invalid location %q: %w", location, err)
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %w", loc.String(), err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %w", loc.String(), err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("resource: could not fetch '%s': status %d", loc.String(), resp.StatusCode)
	}

	return &Resource{
		ReadCloser: resp.Body,
		location:   loc.String(),
		remote:     true,
	}, nil
}

// Create a resource from a reader.
func FromStream(name string, source io.Reader) *Resource {
	return &Resource{
		ReadCloser: io.NopCloser(source),
		location:   name,
	}
}
