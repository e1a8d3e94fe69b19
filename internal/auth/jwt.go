package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims accepted by the API. SubjectID scopes the
// token to one site or meter; an empty value or "*" allows every subject.
type Claims struct {
	SubjectID string `json:"subject_id,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// AllowsSubject reports whether the token may access subjectID.
func (c *Claims) AllowsSubject(subjectID string) bool {
	if c == nil {
		return false
	}
	return c.SubjectID == "" || c.SubjectID == "*" || c.SubjectID == subjectID
}

// ParseJWT validates an HS256 token and returns its claims.
func ParseJWT(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := ParseRole(claims.Role); err != nil {
		return nil, err
	}
	return claims, nil
}

// IssueJWT signs an HS256 token for role, scoped to subjectID, valid for ttl.
func IssueJWT(secret []byte, user string, role Role, subjectID string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	role, err := ParseRole(string(role))
	if err != nil {
		return "", err
	}
	claims := Claims{
		SubjectID: subjectID,
		Role:      string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
