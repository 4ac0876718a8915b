package backend

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// tokenSource serves a static bearer token and refuses to hand out a JWT
// whose exp claim has passed. Opaque tokens are served as is.
type tokenSource struct {
	token  *oauth2.Token
	expiry time.Time
	now    func() time.Time
}

func newTokenSource(raw string) *tokenSource {
	ts := &tokenSource{
		token: &oauth2.Token{AccessToken: raw, TokenType: "Bearer"},
		now:   time.Now,
	}
	if exp, ok := jwtExpiry(raw); ok {
		ts.expiry = exp
		ts.token.Expiry = exp
	}
	return ts
}

// Token implements oauth2.TokenSource.
func (ts *tokenSource) Token() (*oauth2.Token, error) {
	if !ts.expiry.IsZero() && !ts.now().Before(ts.expiry) {
		return nil, ErrTokenExpired
	}
	// oauth2.Transport rejects tokens it considers expired, so hand out a
	// copy without the expiry once the check above has passed.
	t := *ts.token
	t.Expiry = time.Time{}
	return &t, nil
}

// jwtExpiry reads the exp claim of a JWT without verifying its signature.
// The backend verifies the token; the client only needs to know when to
// stop sending it.
func jwtExpiry(raw string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
