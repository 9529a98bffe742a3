package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestCollectImageLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body>
			<img src="/images/001.jpg">
			<img src="images/002.png">
			<img src="https://cdn.example.com/003.webp">
			<img alt="no source">
			<img src="">
		</body></html>`)
	}))
	defer srv.Close()

	g := NewGrabber(testHTTPOptions(), nil)
	defer g.Close()

	links, err := g.CollectImageLinks(context.Background(), srv.URL+"/chapter-12")
	if err != nil {
		t.Fatalf("CollectImageLinks: %v", err)
	}

	want := []string{
		srv.URL + "/images/001.jpg",
		srv.URL + "/images/002.png",
		"https://cdn.example.com/003.webp",
	}
	if len(links) != len(want) {
		t.Fatalf("links = %v, want %v", links, want)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Fatalf("links = %v, want %v", links, want)
		}
	}
}

func TestCollectImageLinksWithRule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
			<img src="/decoration.png">
			<div class="reader"><img data-src="/pages/1.jpg"><img data-src="/pages/2.jpg"></div>
		</body></html>`)
	}))
	defer srv.Close()

	host := hostnameOf(t, srv.URL)
	rules := []SiteRule{{Hostname: host, ImageSelector: ".reader img", ImageAttr: "data-src"}}

	g := NewGrabber(testHTTPOptions(), rules)
	defer g.Close()

	links, err := g.CollectImageLinks(context.Background(), srv.URL+"/chapter-1")
	if err != nil {
		t.Fatalf("CollectImageLinks: %v", err)
	}
	want := []string{srv.URL + "/pages/1.jpg", srv.URL + "/pages/2.jpg"}
	if len(links) != len(want) {
		t.Fatalf("links = %v, want %v", links, want)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Fatalf("links = %v, want %v", links, want)
		}
	}
}

func hostnameOf(t *testing.T, rawURL string) string {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	return parsed.Hostname()
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://example.com/manga/chapter-12", want: "chapter-12"},
		{in: "https://example.com/manga/chapter-12/", want: "chapter-12"},
		{in: "https://example.com/", want: "example.com"},
		{in: "https://example.com", want: "example.com"},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := PageTitle(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("PageTitle(%q) succeeded, want error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("PageTitle(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "https://example.com/pages/001.jpg", want: "001.jpg"},
		{in: "https://example.com/pages/001.jpg?token=abc", want: "001.jpg"},
		{in: "https://example.com/", want: ""},
		{in: "https://example.com", want: ""},
	}
	for _, tt := range tests {
		if got := FilenameFromURL(tt.in); got != tt.want {
			t.Errorf("FilenameFromURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompleteURL(t *testing.T) {
	tests := []struct {
		name string
		href string
		page string
		want string
	}{
		{name: "absolute", href: "https://cdn.example.com/a.jpg", page: "https://example.com/ch", want: "https://cdn.example.com/a.jpg"},
		{name: "rooted", href: "/img/a.jpg", page: "https://example.com/manga/ch-1", want: "https://example.com/img/a.jpg"},
		{name: "relative", href: "img/a.jpg", page: "https://example.com/manga/ch-1", want: "https://example.com/manga/img/a.jpg"},
		{name: "protocol relative", href: "//cdn.example.com/a.jpg", page: "https://example.com/ch", want: "https://cdn.example.com/a.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := completeURL(tt.href, tt.page)
			if err != nil {
				t.Fatalf("completeURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("completeURL(%q, %q) = %q, want %q", tt.href, tt.page, got, tt.want)
			}
		})
	}
}
