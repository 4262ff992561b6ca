package oidc

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"hash"
	"math/big"
	"strings"
	"time"

	"github.com/skillsenselab/authkit/errors"
	"github.com/skillsenselab/authkit/logger"
	"github.com/skillsenselab/authkit/observability"
	"github.com/skillsenselab/authkit/util"
)

// Validator verifies compact JWTs against a single issuer: signature via the
// key cache, then standard claims per the configuration. A rejected token is
// terminal; only the cache retries network failures.
type Validator struct {
	cfg     Config
	cache   *JWKSCache
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// ValidatorOption customizes a Validator.
type ValidatorOption func(*Validator)

// WithValidatorLogger sets the validator logger.
func WithValidatorLogger(log *logger.Logger) ValidatorOption {
	return func(v *Validator) { v.log = log }
}

// WithValidatorMetrics enables validation metric recording.
func WithValidatorMetrics(m *observability.Metrics) ValidatorOption {
	return func(v *Validator) { v.metrics = m }
}

// WithValidatorClock overrides the validation clock. For tests.
func WithValidatorClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) { v.now = now }
}

// NewValidator creates a Validator backed by the given key cache. The config
// must already have defaults applied.
func NewValidator(cfg Config, cache *JWKSCache, opts ...ValidatorOption) *Validator {
	v := &Validator{
		cfg:   cfg,
		cache: cache,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.log == nil {
		v.log = logger.GetGlobalLogger().WithComponent("oidc")
	}
	return v
}

// Validate verifies rawToken and returns its decoded payload. Failures carry
// one of the authentication error codes (MALFORMED_TOKEN, UNKNOWN_KEY,
// INVALID_SIGNATURE, TOKEN_EXPIRED, INVALID_ISSUER, INVALID_AUDIENCE); a
// transient key-fetch failure passes through as a retryable error instead.
// Validation is idempotent: the same token always yields the same outcome
// given the same key set and clock.
func (v *Validator) Validate(ctx context.Context, rawToken string) (*TokenPayload, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanValidateToken)
	defer span.End()

	start := v.now()
	payload, err := v.validate(ctx, rawToken)

	if v.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = string(errors.GetCode(err))
		}
		v.metrics.RecordValidation(ctx, outcome, v.now().Sub(start))
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	observability.SetSpanAttribute(ctx, observability.AttrUserID, payload.Subject())
	return payload, nil
}

func (v *Validator) validate(ctx context.Context, rawToken string) (*TokenPayload, error) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return nil, v.reject(errors.MalformedToken("token does not have three segments"), rawToken)
	}

	header, err := decodeSegment(parts[0])
	if err != nil {
		return nil, v.reject(errors.MalformedToken("header is not valid base64url JSON").WithCause(err), rawToken)
	}

	alg := getString(header, "alg")
	kid := getString(header, "kid")
	if alg == "" || kid == "" {
		return nil, v.reject(errors.MalformedToken("header is missing alg or kid"), rawToken)
	}
	observability.SetSpanAttribute(ctx, observability.AttrKeyID, kid)
	observability.SetSpanAttribute(ctx, observability.AttrAlgorithm, alg)

	if !util.Contains(v.cfg.AllowedAlgs, alg) {
		return nil, v.reject(errors.InvalidSignature("signing algorithm not allowed").
			WithDetail("alg", alg), rawToken)
	}

	key, err := v.cache.Key(ctx, kid)
	if err != nil {
		// UNKNOWN_KEY or a transient fetch error; both pass through untouched.
		return nil, v.reject(err, rawToken)
	}

	// Algorithm-confusion defense: the token must be verified under the
	// algorithm the key was published for, not the one the token declares.
	if key.alg != "" && key.alg != alg {
		return nil, v.reject(errors.InvalidSignature("token algorithm does not match key algorithm").
			WithDetail("token_alg", alg).WithDetail("key_alg", key.alg), rawToken)
	}

	if err := verifySignature(parts[0]+"."+parts[1], parts[2], alg, key.key); err != nil {
		return nil, v.reject(errors.InvalidSignature("signature verification failed").WithCause(err), rawToken)
	}

	claims, err := decodeSegment(parts[1])
	if err != nil {
		return nil, v.reject(errors.MalformedToken("payload is not valid base64url JSON").WithCause(err), rawToken)
	}

	if err := v.checkClaims(claims); err != nil {
		return nil, v.reject(err, rawToken)
	}

	return newTokenPayload(claims), nil
}

// checkClaims enforces exp, aud, and iss per configuration.
func (v *Validator) checkClaims(claims map[string]any) error {
	if !v.cfg.SkipExpiryCheck {
		exp, ok := getFloat64(claims, "exp")
		if !ok {
			// Fail closed: a token without exp cannot prove it is still valid.
			return errors.TokenExpired().WithDetail("reason", "missing exp claim")
		}
		expiresAt := time.Unix(int64(exp), 0)
		if v.now().After(expiresAt.Add(v.cfg.Leeway)) {
			return errors.TokenExpired().WithDetail("expired_at", expiresAt.UTC().Format(time.RFC3339))
		}
	}

	if !v.cfg.SkipAudienceCheck {
		if expected := v.cfg.ExpectedAudience(); expected != "" {
			if !util.Contains(getAudience(claims), expected) {
				return errors.InvalidAudience().WithDetail("expected", expected)
			}
		}
	}

	if iss := getString(claims, "iss"); strings.TrimRight(iss, "/") != v.cfg.Issuer() {
		return errors.InvalidIssuer(iss).WithDetail("expected", v.cfg.Issuer())
	}

	return nil
}

// reject logs the full rejection detail internally. The returned error keeps
// its generic external message; detail lives in Details and the logs only.
func (v *Validator) reject(err error, rawToken string) error {
	appErr := errors.Wrap(err)
	fields := logger.Fields(
		logger.FieldCode, string(appErr.Code),
		logger.FieldIssuer, v.cfg.Issuer(),
		"token", util.MaskToken(rawToken),
	)
	for k, val := range appErr.Details {
		fields[k] = val
	}
	if appErr.Retryable {
		v.log.WithError(appErr.Cause).Warn("token validation unavailable", fields)
	} else {
		v.log.Debug("token rejected", fields)
	}
	return appErr
}

// --- signature verification ---

// verifySignature checks sig (base64url) over signingInput under alg and key.
// ECDSA signatures use the raw r‖s JWS encoding, not ASN.1.
func verifySignature(signingInput, sig, alg string, key crypto.PublicKey) error {
	signature, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return err
	}

	switch alg {
	case "RS256":
		return verifyRSA(signingInput, signature, key, crypto.SHA256)
	case "RS384":
		return verifyRSA(signingInput, signature, key, crypto.SHA384)
	case "RS512":
		return verifyRSA(signingInput, signature, key, crypto.SHA512)
	case "ES256":
		return verifyECDSA(signingInput, signature, key, crypto.SHA256, 32)
	case "ES384":
		return verifyECDSA(signingInput, signature, key, crypto.SHA384, 48)
	case "ES512":
		return verifyECDSA(signingInput, signature, key, crypto.SHA512, 66)
	default:
		return errors.InvalidSignature("unsupported signing algorithm").WithDetail("alg", alg)
	}
}

func verifyRSA(input string, sig []byte, key crypto.PublicKey, hashAlg crypto.Hash) error {
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return errors.InvalidSignature("key is not an RSA public key")
	}
	h := hashFunc(hashAlg)
	h.Write([]byte(input))
	return rsa.VerifyPKCS1v15(rsaKey, hashAlg, h.Sum(nil), sig)
}

func verifyECDSA(input string, sig []byte, key crypto.PublicKey, hashAlg crypto.Hash, keySize int) error {
	ecKey, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return errors.InvalidSignature("key is not an ECDSA public key")
	}
	if len(sig) != 2*keySize {
		return errors.InvalidSignature("ECDSA signature has wrong length")
	}

	r := new(big.Int).SetBytes(sig[:keySize])
	s := new(big.Int).SetBytes(sig[keySize:])

	h := hashFunc(hashAlg)
	h.Write([]byte(input))
	if !ecdsa.Verify(ecKey, h.Sum(nil), r, s) {
		return errors.InvalidSignature("ECDSA signature does not verify")
	}
	return nil
}

func hashFunc(alg crypto.Hash) hash.Hash {
	switch alg {
	case crypto.SHA384:
		return sha512.New384()
	case crypto.SHA512:
		return sha512.New()
	default:
		return sha256.New()
	}
}

// decodeSegment decodes one base64url JWT segment into a claims map.
func decodeSegment(seg string) (map[string]any, error) {
	data, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
