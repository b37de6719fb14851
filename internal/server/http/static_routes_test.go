package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func staticMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	RegisterStaticRoutes(mux, t.TempDir(), t.TempDir())
	return mux
}

func getPath(t *testing.T, mux *http.ServeMux, path, ua, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: viewCookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestRootRedirectsDesktopByDefault(t *testing.T) {
	rec := getPath(t, staticMux(t), "/", "Mozilla/5.0 (X11; Linux x86_64)", "")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/web/" {
		t.Fatalf("location = %q, want /web/", got)
	}
}

func TestRootRedirectsMobileByUserAgent(t *testing.T) {
	ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"
	rec := getPath(t, staticMux(t), "/", ua, "")
	if got := rec.Header().Get("Location"); got != "/web_mobile/" {
		t.Fatalf("location = %q, want /web_mobile/", got)
	}
}

func TestRootHonorsCookieOverUserAgent(t *testing.T) {
	ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"
	rec := getPath(t, staticMux(t), "/", ua, "web")
	if got := rec.Header().Get("Location"); got != "/web/" {
		t.Fatalf("location = %q, want /web/", got)
	}
}

func TestViewQueryOverrideWinsAndSticks(t *testing.T) {
	rec := getPath(t, staticMux(t), "/?view=mobile", "Mozilla/5.0 (X11; Linux x86_64)", "web")
	if got := rec.Header().Get("Location"); got != "/web_mobile/" {
		t.Fatalf("location = %q, want /web_mobile/", got)
	}
	var stored *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == viewCookieName {
			stored = c
		}
	}
	if stored == nil || stored.Value != "mobile" {
		t.Fatalf("view cookie = %+v, want mobile", stored)
	}
}

func TestBareUIPathsGainTrailingSlash(t *testing.T) {
	for path, want := range map[string]string{
		"/web":        "/web/",
		"/web_mobile": "/web_mobile/",
	} {
		rec := getPath(t, staticMux(t), path, "", "")
		if got := rec.Header().Get("Location"); got != want {
			t.Errorf("%s -> %q, want %q", path, got, want)
		}
	}
}

func TestNormalizeView(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"web", "web", true},
		{"PC", "web", true},
		{" desktop ", "web", true},
		{"mobile", "mobile", true},
		{"M", "mobile", true},
		{"web_mobile", "mobile", true},
		{"tv", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeView(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("normalizeView(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
