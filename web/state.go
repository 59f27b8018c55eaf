package web

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	stateCookieName = "__oauth_state"
	stateTTL        = 10 * time.Minute
)

// oauthState is what the login page hands to the callback: the anti-forgery
// value Discord echoes back and the redirect URI the code was issued for.
// Discord rejects the exchange unless the redirect URI matches exactly.
type oauthState struct {
	Value    string
	Redirect string
}

// encode packs the state as "<value>.<base64url(redirect)>". The value is raw
// base64url and never contains a dot.
func (s oauthState) encode() string {
	return s.Value + "." + base64.RawURLEncoding.EncodeToString([]byte(s.Redirect))
}

func decodeState(raw string) (oauthState, bool) {
	value, enc, ok := strings.Cut(raw, ".")
	if !ok || value == "" {
		return oauthState{}, false
	}
	redirect, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil || len(redirect) == 0 {
		return oauthState{}, false
	}
	return oauthState{Value: value, Redirect: string(redirect)}, true
}

// generateState issues a fresh state bound to redirect. The cookie is Secure
// whenever the callback is served over https.
func generateState(c *gin.Context, redirect string) string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)

	st := oauthState{Value: base64.RawURLEncoding.EncodeToString(b), Redirect: redirect}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Value:    st.encode(),
		Path:     "/",
		HttpOnly: true,
		Secure:   strings.HasPrefix(redirect, "https://"),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateTTL.Seconds()),
	})

	return st.Value
}

// validateState checks the echoed state against the cookie and returns the
// redirect URI the authorization was started with.
func validateState(c *gin.Context) (string, bool) {
	stateQuery := c.Query("state")
	if stateQuery == "" {
		return "", false
	}

	cookie, err := c.Request.Cookie(stateCookieName)
	if err != nil {
		return "", false
	}

	st, ok := decodeState(cookie.Value)
	if !ok || st.Value != stateQuery {
		return "", false
	}
	return st.Redirect, true
}

func clearState(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
