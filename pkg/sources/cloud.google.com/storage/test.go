package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"

	"google.golang.org/api/option"
)

// testServer emulates the subset of the Cloud Storage JSON and XML APIs used by a Source.
// Refer to https://cloud.google.com/storage/docs/json_api/v1/objects for guidance on implementation
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux

	bucketName string
	// objects maps object names to their contents
	objects map[string][]byte
	// requests records the path of every request received
	requests []string
}

// newTestServer constructs a testServer holding a single bucket
func newTestServer(bucketName string) *testServer {
	m := http.NewServeMux()
	t := &testServer{
		server:     httptest.NewServer(m),
		mux:        m,
		bucketName: bucketName,
		objects:    map[string][]byte{},
	}
	jsonBase := fmt.Sprintf("/storage/v1/b/%s/o", bucketName)
	m.HandleFunc(jsonBase, t.handleList)
	m.HandleFunc(jsonBase+"/", t.handleAttrs)
	m.HandleFunc(fmt.Sprintf("/%s/", bucketName), t.handleRead)
	return t
}

// cleanup handles all post-test actions required to clean up a testServer
func (t *testServer) cleanup() {
	t.server.Close()
}

// objectJSON renders an object resource as returned by the JSON API
func (t *testServer) objectJSON(name string) map[string]string {
	return map[string]string{
		"kind":           "storage#object",
		"bucket":         t.bucketName,
		"name":           name,
		"size":           fmt.Sprintf("%d", len(t.objects[name])),
		"generation":     "1",
		"metageneration": "1",
	}
}

// handleList responds to objects.list, honoring the 'prefix' and 'delimiter' parameters
func (t *testServer) handleList(w http.ResponseWriter, r *http.Request) {
	t.requests = append(t.requests, r.URL.Path)
	prefix := r.URL.Query().Get("prefix")
	delimiter := r.URL.Query().Get("delimiter")

	names := []string{}
	for name := range t.objects {
		names = append(names, name)
	}
	sort.Strings(names)

	items := []map[string]string{}
	prefixes := []string{}
	for _, name := range names {
		rest, found := strings.CutPrefix(name, prefix)
		if !found {
			continue
		}
		if delimiter != "" {
			if i := strings.Index(rest, delimiter); i >= 0 {
				sub := prefix + rest[:i+len(delimiter)]
				if len(prefixes) == 0 || prefixes[len(prefixes)-1] != sub {
					prefixes = append(prefixes, sub)
				}
				continue
			}
		}
		items = append(items, t.objectJSON(name))
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"kind":     "storage#objects",
		"items":    items,
		"prefixes": prefixes,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleAttrs responds to objects.get for metadata
func (t *testServer) handleAttrs(w http.ResponseWriter, r *http.Request) {
	t.requests = append(t.requests, r.URL.Path)
	name := strings.TrimPrefix(r.URL.Path, fmt.Sprintf("/storage/v1/b/%s/o/", t.bucketName))
	if _, found := t.objects[name]; !found {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(t.objectJSON(name))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleRead responds to XML API object reads with the object's contents
func (t *testServer) handleRead(w http.ResponseWriter, r *http.Request) {
	t.requests = append(t.requests, r.URL.Path)
	name := strings.TrimPrefix(r.URL.Path, fmt.Sprintf("/%s/", t.bucketName))
	contents, found := t.objects[name]
	if !found {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(contents)))
	w.Header().Set("X-Goog-Generation", "1")
	w.Header().Set("X-Goog-Metageneration", "1")
	_, _ = w.Write(contents)
}

// TestSource directs a normal Source object's requests to an httptest server for more predictable
// and consistent testing
type TestSource struct {
	*Source
	server *testServer
}

// NewTestSource constructs a TestSource for the given "<bucket>[/<prefix>]" location
func NewTestSource(location string) (*TestSource, error) {
	bucketName, _ := SplitLocation(location)
	server := newTestServer(bucketName)
	src, err := NewSourceWithOptions(context.Background(), location,
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.server.Client()),
		option.WithEndpoint(server.server.URL+"/storage/v1/"),
	)
	if err != nil {
		server.cleanup()
		return &TestSource{}, err
	}
	t := &TestSource{
		Source: src,
		server: server,
	}
	return t, nil
}

// AddObject stores an object in the emulated bucket. name is relative to the bucket, not the Source's prefix
func (t *TestSource) AddObject(name string, contents []byte) {
	t.server.objects[name] = contents
}

// Requests returns the paths requested so far
func (t *TestSource) Requests() []string {
	return t.server.requests
}

// Cleanup disposes of the TestSource's server
func (t *TestSource) Cleanup() {
	t.server.cleanup()
}
