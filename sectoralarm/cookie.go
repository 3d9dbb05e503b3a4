package sectoralarm

import (
	"fmt"
	"strings"
)

// Cookie is a parsed Set-Cookie value: the leading name/value pair and its attributes.
type Cookie struct {
	Name       string
	Value      string
	Attributes []CookieAttribute
}

type CookieAttribute struct {
	Key   string
	Value string // empty for flag attributes such as HttpOnly
}

// Attr returns the value of the first attribute matching key (case-insensitive).
func (c Cookie) Attr(key string) (string, bool) {
	for _, a := range c.Attributes {
		if strings.EqualFold(a.Key, key) {
			return a.Value, true
		}
	}
	return "", false
}

// ParseCookie splits a Set-Cookie value on ';' and the first segment on '='.
// A missing '=' in the first segment is an error; a missing ';' is not.
func ParseCookie(raw string) (Cookie, error) {
	segments := strings.Split(raw, ";")
	name, value, ok := strings.Cut(segments[0], "=")
	if !ok {
		return Cookie{}, fmt.Errorf("cookie %q: missing '=' in name/value pair", redactCookie(raw))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Cookie{}, fmt.Errorf("cookie %q: empty name", redactCookie(raw))
	}

	c := Cookie{Name: name, Value: strings.TrimSpace(value)}
	for _, seg := range segments[1:] {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		k, v, _ := strings.Cut(seg, "=")
		c.Attributes = append(c.Attributes, CookieAttribute{
			Key:   strings.TrimSpace(k),
			Value: strings.TrimSpace(v),
		})
	}
	return c, nil
}

// ExtractVerificationToken returns the anti-forgery token embedded in the probe cookie:
// the text between the first '=' and the first ';'. Both delimiters must be present, in
// that order, and the token must be non-empty.
func ExtractVerificationToken(raw string) (string, error) {
	eq := strings.IndexByte(raw, '=')
	semi := strings.IndexByte(raw, ';')
	switch {
	case eq < 0:
		return "", fmt.Errorf("%w: cookie has no '='", ErrTokenParseFailed)
	case semi < 0:
		return "", fmt.Errorf("%w: cookie has no ';'", ErrTokenParseFailed)
	case semi < eq:
		return "", fmt.Errorf("%w: ';' precedes '='", ErrTokenParseFailed)
	}

	c, err := ParseCookie(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenParseFailed, err)
	}
	if c.Value == "" {
		return "", fmt.Errorf("%w: empty token", ErrTokenParseFailed)
	}
	return c.Value, nil
}

// joinCookies folds several Set-Cookie values into one Cookie header value.
func joinCookies(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, "; ")
}

// redactCookie keeps the cookie name only; values are secrets.
func redactCookie(raw string) string {
	name, _, ok := strings.Cut(raw, "=")
	if !ok {
		if len(raw) > 16 {
			return raw[:16] + "..."
		}
		return raw
	}
	return strings.TrimSpace(name) + "=***"
}
