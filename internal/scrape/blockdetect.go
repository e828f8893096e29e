package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
	BlockStatus     BlockType = "status"
	BlockLoginWall  BlockType = "login_wall"
)

// LinkedIn answers unrecognized clients with this non-standard status.
const statusLinkedInDenied = 999

var loginWallMarkers = []string{
	"authwall",
	"sign in to view",
	"sign in to see",
	"join to view",
	"log in to continue",
}

// DetectBlock checks an HTTP response for signs of anti-bot protection or a
// login wall in place of the requested page.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == 403 || resp.StatusCode == 503 {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-cache-status") != "" {
			return true, BlockCloudflare
		}
		if resp.Header.Get("server") == "cloudflare" {
			return true, BlockCloudflare
		}
	}

	switch resp.StatusCode {
	case statusLinkedInDenied, http.StatusForbidden, http.StatusTooManyRequests:
		return true, BlockStatus
	}

	if resp.Request != nil && resp.Request.URL != nil && strings.Contains(resp.Request.URL.Path, "authwall") {
		return true, BlockLoginWall
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge") {
		return true, BlockCloudflare
	}

	if strings.Contains(lower, "captcha") {
		return true, BlockCaptcha
	}

	for _, m := range loginWallMarkers {
		if strings.Contains(lower, m) {
			return true, BlockLoginWall
		}
	}

	// JS-only shell: very small body with noscript or meta refresh.
	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, BlockJSShell
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
