package httpserver

import (
	"net/http"
	"strings"
)

const viewCookieName = "cathedral_view"

// RegisterStaticRoutes mounts:
// - /web/*        -> desktop board UI
// - /web_mobile/* -> mobile board UI
// - /             -> redirect by view override, cookie, then User-Agent
func RegisterStaticRoutes(mux *http.ServeMux, webDir, mobileDir string) {
	if mux == nil {
		return
	}
	if webDir == "" {
		webDir = "."
	}
	if mobileDir == "" {
		mobileDir = webDir
	}

	mux.Handle("/web/", http.StripPrefix("/web/", http.FileServer(http.Dir(webDir))))
	mux.Handle("/web_mobile/", http.StripPrefix("/web_mobile/", http.FileServer(http.Dir(mobileDir))))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			target := "/web/"
			if pickView(w, r) == "mobile" {
				target = "/web_mobile/"
			}
			w.Header().Set("Vary", "User-Agent, Cookie")
			http.Redirect(w, r, target, http.StatusFound)
		case "/web", "/web_mobile":
			http.Redirect(w, r, r.URL.Path+"/", http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	})
}

// pickView resolves which UI to serve. An explicit ?view= wins and is
// remembered; otherwise the cookie, otherwise the User-Agent.
func pickView(w http.ResponseWriter, r *http.Request) string {
	if v, ok := normalizeView(r.URL.Query().Get("view")); ok {
		rememberView(w, v)
		return v
	}

	if c, err := r.Cookie(viewCookieName); err == nil {
		if v, ok := normalizeView(c.Value); ok {
			return v
		}
	}

	if isMobileUA(r.UserAgent()) {
		return "mobile"
	}
	return "web"
}

func rememberView(w http.ResponseWriter, view string) {
	http.SetCookie(w, &http.Cookie{
		Name:     viewCookieName,
		Value:    view,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	})
}

func normalizeView(v string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "web", "desktop", "pc":
		return "web", true
	case "mobile", "m", "phone", "web_mobile":
		return "mobile", true
	default:
		return "", false
	}
}

func isMobileUA(ua string) bool {
	s := strings.ToLower(ua)
	if s == "" {
		return false
	}
	for _, needle := range []string{
		"android",
		"iphone",
		"ipad",
		"ipod",
		"mobile",
		"windows phone",
	} {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
