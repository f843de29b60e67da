// Package oauth implements the authorization code flow with PKCE for social sign-in.
//
// A sign-in round trip stores the state and PKCE verifier between the
// redirect and the callback (the auth service keeps them in an encrypted cookie):
//
//	state, verifier := oauth.NewState(), oauth.NewVerifier()
//	http.Redirect(w, r, google.AuthCodeURL(state, verifier), http.StatusFound)
//
//	// callback
//	tok, err := google.Exchange(ctx, r.URL.Query().Get("code"), verifier)
//	info, err := google.UserInfo(ctx, tok)
//
// Only verified emails are returned; otherwise UserInfo fails with ErrEmailNotVerified.
package oauth
