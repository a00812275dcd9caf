package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Belphemur/MediaDownloader/internal/config"
	"github.com/Belphemur/MediaDownloader/internal/models"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title> Episode 12 - Example TV </title></head>
<body>
  <video src="/media/ep12/index.m3u8"></video>
  <a href="https://cdn.example.com/ep12/720p.m3u8?token=abc">720p</a>
  <a href="/about">About</a>
  <div data-src="//cdn.example.com/ep12/1080p.m3u8"></div>
  <script>
    var player = { url: "https://cdn.example.com/ep12/720p.m3u8?token=abc" };
    var backup = 'https://backup.example.com/ep12/master.m3u8';
  </script>
</body>
</html>`

func newPageServer(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("Expected User-Agent test-agent, got %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestInspector_Inspect(t *testing.T) {
	server := newPageServer(t, "text/html; charset=utf-8", samplePage)
	i := NewInspector(5*time.Second, "test-agent")

	info, err := i.Inspect(context.Background(), server.URL+"/watch/12")
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.Title != "Episode 12 - Example TV" {
		t.Errorf("Unexpected title %q", info.Title)
	}

	want := []string{
		server.URL + "/media/ep12/index.m3u8",
		"https://cdn.example.com/ep12/720p.m3u8?token=abc",
		"http://cdn.example.com/ep12/1080p.m3u8",
		"https://backup.example.com/ep12/master.m3u8",
	}
	if !reflect.DeepEqual(info.MediaURLs, want) {
		t.Errorf("MediaURLs = %v\nwant %v", info.MediaURLs, want)
	}
}

func TestInspector_NoMedia(t *testing.T) {
	server := newPageServer(t, "text/html", "<html><head><title>Empty</title></head><body></body></html>")
	i := NewInspector(5*time.Second, "test-agent")

	info, err := i.Inspect(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.MediaURLs == nil || len(info.MediaURLs) != 0 {
		t.Errorf("Expected empty, non-nil media list, got %#v", info.MediaURLs)
	}
}

func TestInspector_ConvertsCharset(t *testing.T) {
	body := "<html><head><title>Caf\xe9</title></head></html>"
	server := newPageServer(t, "text/html; charset=ISO-8859-1", body)
	i := NewInspector(5*time.Second, "test-agent")

	info, err := i.Inspect(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.Title != "Café" {
		t.Errorf("Expected UTF-8 title Café, got %q", info.Title)
	}
}

func TestInspector_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	_, err := NewInspector(time.Second, "x").Inspect(context.Background(), server.URL)
	if err == nil || !strings.Contains(err.Error(), "410") {
		t.Fatalf("Expected status code error, got %v", err)
	}
}

func TestInspector_InvalidURL(t *testing.T) {
	i := NewInspector(time.Second, "x")
	for _, u := range []string{"", "ftp://example.com", "not a url"} {
		if _, err := i.Inspect(context.Background(), u); err == nil {
			t.Errorf("Expected error for %q", u)
		}
	}
}

func TestInspector_SetProxy(t *testing.T) {
	var proxied bool
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied = true
		if r.URL.Host != "media.invalid" {
			t.Errorf("Expected proxied request for media.invalid, got %q", r.URL.Host)
		}
		_, _ = w.Write([]byte("<html><title>via proxy</title></html>"))
	}))
	defer proxy.Close()

	i := NewInspector(5*time.Second, "x")
	if err := i.SetProxy(strings.TrimPrefix(proxy.URL, "http://")); err != nil {
		t.Fatalf("SetProxy failed: %v", err)
	}
	if i.Proxy() != proxy.URL {
		t.Errorf("Proxy() = %q, want %q", i.Proxy(), proxy.URL)
	}

	info, err := i.Inspect(context.Background(), "http://media.invalid/page")
	if err != nil {
		t.Fatalf("Inspect through proxy failed: %v", err)
	}
	if !proxied || info.Title != "via proxy" {
		t.Errorf("Expected request to go through proxy, got title %q", info.Title)
	}

	if err := i.SetProxy(""); err != nil {
		t.Fatalf("SetProxy(\"\") failed: %v", err)
	}
	if i.Proxy() != "" {
		t.Errorf("Expected proxy to be cleared, got %q", i.Proxy())
	}
}

func TestInspector_SetProxyInvalid(t *testing.T) {
	i := NewInspector(time.Second, "x")
	if err := i.SetProxy("http://"); err == nil {
		t.Error("Expected error for proxy without host")
	}
}

func TestNewInspectorFromConfig_InvalidTimeout(t *testing.T) {
	i := NewInspectorFromConfig(&config.Config{ClientTimeout: "soon"})
	if i.client.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout, got %s", i.client.Timeout)
	}
	if i.userAgent != config.DefaultUserAgent {
		t.Errorf("Expected default user agent, got %q", i.userAgent)
	}
}

func TestFormFromPage(t *testing.T) {
	page := &models.PageInfo{URL: "https://example.com/watch/12", Title: "Episode 12"}
	form := FormFromPage(page, "https://cdn.example.com/ep12.m3u8")

	if form.Title != "Episode 12" || form.URL != "https://cdn.example.com/ep12.m3u8" {
		t.Errorf("Unexpected form %+v", form)
	}
	headers := models.ParseHeaders(form.Headers)
	if headers["Origin"] != "https://example.com" || headers["Referer"] != "https://example.com/watch/12" {
		t.Errorf("Unexpected headers %v", headers)
	}
}
