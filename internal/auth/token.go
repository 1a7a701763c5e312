package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/socialgraph/socialgraph/internal/shared"
	"github.com/socialgraph/socialgraph/internal/users"
)

const tokenType = "bearer"

// Token is the response handed to clients after a successful authentication.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// DecodeStatus classifies the outcome of decoding a bearer token. It is kept
// internal for logs and metrics; clients only ever see an unauthorized reply.
type DecodeStatus int

const (
	DecodeValid DecodeStatus = iota
	DecodeExpired
	DecodeMalformed
	DecodeSignatureMismatch
)

func (s DecodeStatus) String() string {
	switch s {
	case DecodeValid:
		return "valid"
	case DecodeExpired:
		return "expired"
	case DecodeMalformed:
		return "malformed"
	case DecodeSignatureMismatch:
		return "signature_mismatch"
	default:
		return "unknown"
	}
}

// DecodeResult carries the subject when Status is DecodeValid.
type DecodeResult struct {
	Status  DecodeStatus
	Subject string
}

// TokenIssuer signs and verifies HS256 tokens bound to a user id.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// IssuerOption customises a TokenIssuer.
type IssuerOption func(*TokenIssuer)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewTokenIssuer builds an issuer from the process-wide signing secret.
func NewTokenIssuer(secret []byte, ttl time.Duration, opts ...IssuerOption) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: signing secret must be provided")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	i := &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// TTL returns the token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token whose subject is the user id and which expires TTL
// from now.
func (i *TokenIssuer) Issue(user *users.User) (Token, error) {
	if user == nil {
		return Token{}, errors.New("auth: issue token: nil user")
	}
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return Token{
		AccessToken: signed,
		TokenType:   tokenType,
		ExpiresIn:   int64(i.ttl / time.Second),
	}, nil
}

// Decode parses raw and classifies the outcome. A token is expired once the
// current time reaches its exp claim; there is no leeway.
func (i *TokenIssuer) Decode(raw string) DecodeResult {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return DecodeResult{Status: classifyJWTError(err)}
	}
	if claims.Subject == "" {
		return DecodeResult{Status: DecodeMalformed}
	}
	return DecodeResult{Status: DecodeValid, Subject: claims.Subject}
}

// Verify returns the user id carried by raw or shared.ErrInvalidToken.
func (i *TokenIssuer) Verify(raw string) (int64, error) {
	res := i.Decode(raw)
	if res.Status != DecodeValid {
		return 0, shared.ErrInvalidToken
	}
	id, err := strconv.ParseInt(res.Subject, 10, 64)
	if err != nil {
		return 0, shared.ErrInvalidToken
	}
	return id, nil
}

// classifyJWTError translates jwt library errors to decode statuses.
func classifyJWTError(err error) DecodeStatus {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return DecodeSignatureMismatch
	case errors.Is(err, jwt.ErrTokenExpired):
		return DecodeExpired
	default:
		return DecodeMalformed
	}
}
