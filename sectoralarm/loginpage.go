package sectoralarm

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the ASP.NET MVC validation markup the login page renders on failure,
// most specific first.
var loginErrorSelectors = []string{
	".validation-summary-errors li",
	".validation-summary-errors",
	".field-validation-error",
	".alert-danger",
}

// loginFailureReason extracts the portal's human-readable reason from a rejected login
// page. It returns "" when body is not HTML or carries no recognizable message.
func loginFailureReason(contentType, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), kContentTypeHTML) {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	for _, sel := range loginErrorSelectors {
		var msgs []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if txt := collapseSpace(s.Text()); txt != "" {
				msgs = append(msgs, txt)
			}
		})
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
