package sectoralarm

import (
	"net/http"
	"strconv"
)

const (
	kHeaderAccept                  = "Accept"
	kHeaderAcceptLanguage          = "Accept-Language"
	kHeaderCacheControl            = "Cache-Control"
	kHeaderContentLength           = "Content-Length"
	kHeaderContentType             = "Content-Type"
	kHeaderCookie                  = "Cookie"
	kHeaderSetCookie               = "Set-Cookie"
	kHeaderUpgradeInsecureRequests = "Upgrade-Insecure-Requests"
	kHeaderUserAgent               = "User-Agent"

	kContentTypeForm = "application/x-www-form-urlencoded"
	kContentTypeJSON = "application/json;charset=UTF-8"
	kContentTypeHTML = "text/html"

	kAcceptForm = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8"
	kAcceptJSON = "application/json, text/plain, */*"

	kAcceptLanguage = "en-US,en;q=0.9,sv;q=0.8"

	// DefaultUserAgent is the browser the portal expects to be talking to.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/64.0.3282.140 Safari/537.36"
)

// FormHeaders returns headers for a simulated browser form submission.
// Content-Length is the byte length of body.
func FormHeaders(cookie string, body []byte) http.Header {
	h := browserHeaders(cookie, body)
	h.Set(kHeaderAccept, kAcceptForm)
	h.Set(kHeaderContentType, kContentTypeForm)
	return h
}

// JSONHeaders returns headers for the portal's JSON endpoints.
func JSONHeaders(cookie string, body []byte) http.Header {
	h := browserHeaders(cookie, body)
	h.Set(kHeaderAccept, kAcceptJSON)
	h.Set(kHeaderContentType, kContentTypeJSON)
	return h
}

// Accept-Encoding is left to net/http so gzip responses are decoded transparently.
func browserHeaders(cookie string, body []byte) http.Header {
	h := make(http.Header, 9)
	h.Set(kHeaderAcceptLanguage, kAcceptLanguage)
	h.Set(kHeaderCacheControl, "max-age=0")
	h.Set(kHeaderContentLength, strconv.Itoa(len(body)))
	h.Set(kHeaderUpgradeInsecureRequests, "1")
	h.Set(kHeaderUserAgent, DefaultUserAgent)
	if cookie != "" {
		h.Set(kHeaderCookie, cookie)
	}
	return h
}
