package locales

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "folio_lang"
)

// Negotiator picks a supported locale code for a request.
type Negotiator struct {
	codes    []string
	fallback string
	matcher  language.Matcher
}

// NewNegotiator builds a negotiator over the supported codes. The fallback is
// used when nothing in the request matches.
func NewNegotiator(fallback string, codes []string) *Negotiator {
	n := &Negotiator{fallback: strings.ToLower(strings.TrimSpace(fallback))}
	tags := make([]language.Tag, 0, len(codes)+1)
	// The matcher treats the first tag as the default.
	if tag, err := language.Parse(n.fallback); err == nil {
		tags = append(tags, tag)
		n.codes = append(n.codes, n.fallback)
	}
	for _, code := range codes {
		normalized, err := NormalizeCode(code)
		if err != nil || normalized == n.fallback {
			continue
		}
		tag, err := language.Parse(normalized)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		n.codes = append(n.codes, normalized)
	}
	if len(tags) > 0 {
		n.matcher = language.NewMatcher(tags)
	}
	return n
}

// NegotiatorFor builds a negotiator from locale records.
func NegotiatorFor(all []*Locale) *Negotiator {
	fallback := ""
	codes := make([]string, 0, len(all))
	for _, l := range all {
		if l == nil || !l.IsActive {
			continue
		}
		if l.IsDefault {
			fallback = l.Code
		}
		codes = append(codes, l.Code)
	}
	if fallback == "" && len(codes) > 0 {
		fallback = codes[0]
	}
	return NewNegotiator(fallback, codes)
}

// Supported returns the codes in matcher order, fallback first.
func (n *Negotiator) Supported() []string {
	return append([]string(nil), n.codes...)
}

func (n *Negotiator) Fallback() string {
	return n.fallback
}

// Match returns the supported code for value or "" when value is not supported.
func (n *Negotiator) Match(value string) string {
	normalized, err := NormalizeCode(value)
	if err != nil {
		return ""
	}
	for _, code := range n.codes {
		if code == normalized {
			return code
		}
	}
	if base, _, ok := strings.Cut(normalized, "-"); ok {
		for _, code := range n.codes {
			if code == base {
				return code
			}
		}
	}
	return ""
}

// Negotiate resolves the locale for r. Precedence: explicit (path) value, the
// lang query parameter, the preference cookie, then Accept-Language. The
// returned bool reports whether the choice came from the query parameter and
// should be persisted.
func (n *Negotiator) Negotiate(r *http.Request, explicit string) (string, bool) {
	if code := n.Match(explicit); code != "" {
		return code, false
	}
	if r == nil {
		return n.fallback, false
	}
	if code := n.Match(r.URL.Query().Get(LangParam)); code != "" {
		return code, true
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if code := n.Match(cookie.Value); code != "" {
			return code, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if code := n.FromAcceptLanguage(accept); code != "" {
			return code, false
		}
	}
	return n.fallback, false
}

// FromAcceptLanguage matches an Accept-Language header against the supported set.
func (n *Negotiator) FromAcceptLanguage(header string) string {
	if n.matcher == nil {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, index, confidence := n.matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(n.codes) {
		return ""
	}
	return n.codes[index]
}

// SetCookie persists the selected locale on the response.
func SetCookie(w http.ResponseWriter, code string, secure bool) {
	if w == nil || code == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    code,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
