// Package htmx contains the small set of htmx request and response helpers
// the server-rendered pages need: request detection, client-side
// navigation (HX-Location), full redirects (HX-Redirect) and response
// header options applied by Context.Render.
package htmx
