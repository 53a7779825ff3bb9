package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// Codec signs and verifies compact HS256 tokens. It holds no state besides
// the secret and is safe for concurrent use.
type Codec struct {
	secret []byte
	parser *jwt.Parser
}

// NewCodec creates a codec bound to the given secret
func NewCodec(secret []byte) *Codec {
	key := make([]byte, len(secret))
	copy(key, secret)

	return &Codec{
		secret: key,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithStrictDecoding(),
			// expiry is checked by TokenValidator against the caller's clock
			jwt.WithoutClaimsValidation(),
		),
	}
}

// Encode serializes the claims and signs header+payload
func (c *Codec) Encode(claims jwt.Claims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", internalError(err, "failed to sign JWT")
	}

	return signed, nil
}

// Decode verifies the signature over the received header+payload and fills
// claims. It returns ErrTokenSignature when the signature or algorithm does
// not verify and ErrTokenMalformed for anything structurally wrong.
func (c *Codec) Decode(tokenString string, claims jwt.Claims) error {
	if tokenString == "" {
		return ErrTokenMalformed
	}

	token, err := c.parser.ParseWithClaims(tokenString, claims, c.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			return ErrTokenSignature
		}
		return ErrTokenMalformed
	}

	if token == nil || !token.Valid {
		return ErrTokenSignature
	}

	return nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrTokenUnverifiable
	}
	return c.secret, nil
}
