package htmx

import "net/http"

// Response headers.
const (
	HeaderHXLocation   = "HX-Location"
	HeaderHXPushURL    = "HX-Push-Url"
	HeaderHXRedirect   = "HX-Redirect"
	HeaderHXRefresh    = "HX-Refresh"
	HeaderHXReswap     = "HX-Reswap"
	HeaderHXRetarget   = "HX-Retarget"
	HeaderHXTrigger    = "HX-Trigger"
	HeaderHXReplaceURL = "HX-Replace-Url"
)

// Request headers.
const (
	HeaderHXRequest    = "HX-Request"
	HeaderHXBoosted    = "HX-Boosted"
	HeaderHXCurrentURL = "HX-Current-URL"
	HeaderHXTarget     = "HX-Target"
)

// IsHTMX returns true if the request originated from HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}

// IsBoosted returns true for hx-boost navigations.
func IsBoosted(r *http.Request) bool {
	return r.Header.Get(HeaderHXBoosted) == "true"
}

// RedirectWithStatus sends a full-page redirect.
// HTMX requests get HX-Redirect with 200 because htmx ignores 3xx responses.
func RedirectWithStatus(w http.ResponseWriter, r *http.Request, target string, status int) {
	if IsHTMX(r) {
		w.Header().Set(HeaderHXRedirect, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, status)
}

// Location navigates without a full reload.
// HTMX requests get HX-Location and the page is swapped client-side;
// other requests get a redirect with the given status.
func Location(w http.ResponseWriter, r *http.Request, path string, status int) {
	if IsHTMX(r) {
		w.Header().Set(HeaderHXLocation, path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, status)
}

// Refresh asks htmx to reload the current page. Non-HTMX requests are sent back to fallback.
func Refresh(w http.ResponseWriter, r *http.Request, fallback string) {
	if IsHTMX(r) {
		w.Header().Set(HeaderHXRefresh, "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fallback, http.StatusSeeOther)
}
