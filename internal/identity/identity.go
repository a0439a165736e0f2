// Package identity verifies session tokens issued by the external identity
// provider. The service never stores credentials; it trusts the signed
// subject and profile claims.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the caller as asserted by the identity provider.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	ImageURL string `json:"image_url"`
	Role     string `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

type PublicMetadata struct {
	Role string `json:"role,omitempty"`
}

// Claims mirrors the session token template: the standard claims plus the
// profile fields copied into the token.
type Claims struct {
	Email          string         `json:"email,omitempty"`
	Name           string         `json:"name,omitempty"`
	ImageURL       string         `json:"image_url,omitempty"`
	PublicMetadata PublicMetadata `json:"public_metadata,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses an HMAC-signed token and returns the identity it carries.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		ID:       claims.Subject,
		Email:    claims.Email,
		FullName: claims.Name,
		ImageURL: claims.ImageURL,
		Role:     claims.PublicMetadata.Role,
	}, nil
}

// Issue signs a token for ident. Used by the dev CLI and tests.
func (v *Verifier) Issue(ident Identity, ttl time.Duration) (string, error) {
	if ttl == 0 {
		return "", errors.New("token ttl must be set")
	}
	now := time.Now()
	claims := Claims{
		Email:          ident.Email,
		Name:           ident.FullName,
		ImageURL:       ident.ImageURL,
		PublicMetadata: PublicMetadata{Role: ident.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.ID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
