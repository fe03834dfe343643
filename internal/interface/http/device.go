package http

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/yanqian/foodeat/internal/domain/analysis"
)

var mobileUserAgent = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// deviceFromRequest prefers the Sec-CH-UA-Mobile client hint and falls back to the user agent.
func deviceFromRequest(r *http.Request) analysis.Device {
	if hint := strings.TrimSpace(r.Header.Get("Sec-CH-UA-Mobile")); hint != "" {
		return analysis.Device{Mobile: hint == "?1"}
	}
	return analysis.Device{Mobile: mobileUserAgent.MatchString(r.UserAgent())}
}
