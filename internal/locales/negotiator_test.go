package locales

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNegotiatorPrecedence(t *testing.T) {
	n := NewNegotiator("en", []string{"en", "ar"})

	req := httptest.NewRequest(http.MethodGet, "/api/home?lang=ar", nil)
	req.AddCookie(&http.Cookie{Name: LangCookieName, Value: "en"})
	req.Header.Set("Accept-Language", "en-US")

	code, persist := n.Negotiate(req, "")
	if code != "ar" || !persist {
		t.Fatalf("expected query param to win, got %s persist=%v", code, persist)
	}

	code, persist = n.Negotiate(req, "en")
	if code != "en" || persist {
		t.Fatalf("expected explicit value to win, got %s persist=%v", code, persist)
	}

	cookieOnly := httptest.NewRequest(http.MethodGet, "/", nil)
	cookieOnly.AddCookie(&http.Cookie{Name: LangCookieName, Value: "ar"})
	cookieOnly.Header.Set("Accept-Language", "en")
	if code, _ := n.Negotiate(cookieOnly, ""); code != "ar" {
		t.Fatalf("expected cookie to beat Accept-Language, got %s", code)
	}
}

func TestNegotiatorAcceptLanguage(t *testing.T) {
	n := NewNegotiator("en", []string{"en", "ar"})

	cases := map[string]string{
		"ar-EG,ar;q=0.9,en;q=0.5": "ar",
		"en-GB":                   "en",
		"fr-FR":                   "",
		"":                        "",
	}
	for header, want := range cases {
		if got := n.FromAcceptLanguage(header); got != want {
			t.Fatalf("FromAcceptLanguage(%q) = %q, want %q", header, got, want)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de")
	if code, _ := n.Negotiate(req, ""); code != "en" {
		t.Fatalf("expected fallback en, got %s", code)
	}
}

func TestNegotiatorForSkipsInactive(t *testing.T) {
	n := NegotiatorFor([]*Locale{
		{Code: "en", IsActive: true},
		{Code: "ar", IsActive: true, IsDefault: true},
		{Code: "fr", IsActive: false},
	})
	if n.Fallback() != "ar" {
		t.Fatalf("expected ar fallback, got %s", n.Fallback())
	}
	if n.Match("fr") != "" {
		t.Fatal("expected inactive locale to be unsupported")
	}
	if got := n.Supported(); len(got) != 2 || got[0] != "ar" {
		t.Fatalf("unexpected supported list %v", got)
	}
}
