package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// testServer emulates the Drive v3 API responses used by a Source.
// Refer to https://developers.google.com/drive/api/reference/rest/v3/files for guidance on implementation
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux

	// files holds the metadata returned by files.list
	files []*gdrive.File
	// contents maps file IDs to the bytes returned by a media download
	contents map[string][]byte
	// queries records the 'q' parameter of every files.list request received
	queries []string
	// pageSizes records the 'pageSize' parameter of every files.list request received
	pageSizes []string
}

// newTestServer constructs a testServer object
func newTestServer() *testServer {
	m := http.NewServeMux()
	t := &testServer{
		server:   httptest.NewServer(m),
		mux:      m,
		contents: map[string][]byte{},
	}
	m.HandleFunc("/files", t.handleList)
	m.HandleFunc("/files/", t.handleGet)
	return t
}

// cleanup handles all post-test actions required to clean up a testServer
func (t *testServer) cleanup() {
	t.server.Close()
}

// handleList responds to files.list with every registered file. Filtering is left to the
// query assertions made by the tests
func (t *testServer) handleList(w http.ResponseWriter, r *http.Request) {
	t.queries = append(t.queries, r.URL.Query().Get("q"))
	t.pageSizes = append(t.pageSizes, r.URL.Query().Get("pageSize"))

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(&gdrive.FileList{Files: t.files})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleGet responds to media downloads of registered files
func (t *testServer) handleGet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/files/")
	contents, found := t.contents[id]
	if !found || r.URL.Query().Get("alt") != "media" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(contents)))
	_, _ = w.Write(contents)
}

// TestSource directs a normal Source object's requests to an httptest server for more predictable
// and consistent testing
type TestSource struct {
	*Source
	server *testServer
}

// NewTestSource constructs a TestSource for the given folder
func NewTestSource(folderID string) (*TestSource, error) {
	server := newTestServer()
	src, err := NewSourceWithOptions(context.Background(), folderID,
		option.WithHTTPClient(server.server.Client()),
		option.WithEndpoint(server.server.URL+"/"),
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

// AddFile registers a file in the emulated folder along with its contents
func (t *TestSource) AddFile(id, name string, contents []byte) {
	t.server.files = append(t.server.files, &gdrive.File{Id: id, Name: name})
	t.server.contents[id] = contents
}

// Queries returns the 'q' parameters received so far
func (t *TestSource) Queries() []string {
	return t.server.queries
}

// PageSizes returns the 'pageSize' parameters received so far
func (t *TestSource) PageSizes() []string {
	return t.server.pageSizes
}

// Cleanup disposes of the TestSource's server
func (t *TestSource) Cleanup() {
	t.server.cleanup()
}
