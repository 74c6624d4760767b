package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockRoundTripper accepts PutObject requests and remembers what was sent.
type mockRoundTripper struct {
	mu    sync.Mutex
	state map[string]stored
}

type stored struct {
	body        []byte
	contentType string
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	body, _ := io.ReadAll(req.Body)
	m.mu.Lock()
	m.state[req.URL.Path] = stored{body: body, contentType: req.Header.Get("Content-Type")}
	m.mu.Unlock()
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
}

func newMockStore(t *testing.T, cfg Config) (*Store, *mockRoundTripper) {
	t.Helper()
	rt := &mockRoundTripper{state: make(map[string]stored)}
	cfg.AccessKeyID, cfg.SecretAccessKey = "AKIA", "SECRET"
	s, err := New(context.Background(), cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return s, rt
}

func TestStore_Put(t *testing.T) {
	s, rt := newMockStore(t, Config{Bucket: "leads", Endpoint: "https://mock.s3.local", PathStyle: true})

	url, size, err := s.Put(context.Background(), "uploads/alice/plan.pdf", strings.NewReader("floor plan"), "application/pdf")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if size != int64(len("floor plan")) {
		t.Errorf("unexpected size %d", size)
	}
	if url != "https://mock.s3.local/leads/uploads/alice/plan.pdf" {
		t.Errorf("unexpected url %s", url)
	}

	obj, ok := rt.state["/leads/uploads/alice/plan.pdf"]
	if !ok {
		t.Fatalf("object not sent, got %v", rt.state)
	}
	if !bytes.Contains(obj.body, []byte("floor plan")) {
		t.Errorf("body not sent: %q", obj.body)
	}
	if obj.contentType != "application/pdf" {
		t.Errorf("unexpected content type %q", obj.contentType)
	}
}

func TestStore_ObjectURL(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "AWS default",
			cfg:  Config{Bucket: "b", Region: "eu-west-1"},
			want: "https://b.s3.eu-west-1.amazonaws.com/uploads/a%20b.pdf",
		},
		{
			name: "Custom endpoint virtual host",
			cfg:  Config{Bucket: "b", Endpoint: "http://minio:9000"},
			want: "http://b.minio:9000/uploads/a%20b.pdf",
		},
		{
			name: "Public base URL wins",
			cfg:  Config{Bucket: "b", Endpoint: "http://minio:9000", PathStyle: true, PublicBaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com/uploads/a%20b.pdf",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newMockStore(t, tc.cfg)
			if got := s.objectURL("uploads/a b.pdf"); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestNew_RequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Error("expected error without bucket")
	}
}
