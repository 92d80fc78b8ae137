package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateLifetime = 5 * time.Minute

var ErrMissingStateSecret = errors.New("login state secret is not configured")

// StateClaims travel through the identity provider inside the OAuth state
// parameter and tell the backend callback where to send the user afterwards.
type StateClaims struct {
	jwt.RegisteredClaims
	Redirect string `json:"redirect,omitempty"`
}

// Login builds identity provider authorization URLs.
type Login struct {
	oauth  *oauth2.Config
	secret []byte
	issuer string
	now    func() time.Time
}

func NewLogin(clientID, redirectURL string, secret []byte, issuer string) (*Login, error) {
	if len(secret) == 0 {
		return nil, ErrMissingStateSecret
	}
	return &Login{
		oauth: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURL,
			Endpoint:    google.Endpoint,
			Scopes:      []string{"openid", "email", "profile"},
		},
		secret: secret,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// AuthURL returns the provider URL for a login that ends on redirect.
func (l *Login) AuthURL(redirect string) (string, error) {
	state, err := l.signState(SafeRedirect(redirect))
	if err != nil {
		return "", err
	}
	return l.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account")), nil
}

func (l *Login) signState(redirect string) (string, error) {
	now := l.now()
	claims := StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    l.issuer,
			Audience:  jwt.ClaimStrings{l.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateLifetime)),
		},
		Redirect: redirect,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.secret)
	if err != nil {
		return "", fmt.Errorf("signing login state: %w", err)
	}
	return token, nil
}

// ParseState validates a state token produced by AuthURL.
func (l *Login) ParseState(token string) (*StateClaims, error) {
	claims := &StateClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return l.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(l.issuer),
		jwt.WithAudience(l.issuer),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing login state: %w", err)
	}
	return claims, nil
}

// SafeRedirect keeps same-site relative targets and maps anything else to "/".
func SafeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return target
}

// LoginRedirect is where unauthenticated page navigations are sent:
// the site root with the requested path as the return target.
func LoginRedirect(fullPath string) string {
	return "/?redirect=" + url.QueryEscape(fullPath)
}
