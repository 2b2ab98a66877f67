package jwt

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Heidric/guest-self-service/internal/logger"
	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type ctxKey string

const (
	CtxKeyClaims ctxKey = "claims"
	CtxKeyToken  ctxKey = "token"
)

var (
	audience  string
	issuer    string
	secret    string
	accessTTL time.Duration
	log       zerolog.Logger
)

func Initialize(cfg *Config) {
	audience = cfg.Audience
	issuer = cfg.Issuer
	secret = cfg.Secret
	accessTTL = cfg.AccessTTL
	log = logger.Log.With().Str("name", "jwt").Logger()
}

// AccessTTL is the configured lifetime of guest access tokens.
func AccessTTL() time.Duration {
	return accessTTL
}

func NewToken(dto model.JwtDTO, duration time.Duration) (string, error) {
	claims := &model.GuestClaim{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   dto.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			Audience:  jwt.ClaimStrings{audience},
		},
		ID:     dto.ID,
		StayID: dto.StayID,
		Role:   dto.Role,
		SID:    dto.SID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}

	return tokenString, nil
}

func Verify(token string) (*model.GuestClaim, error) {
	t, err := jwt.ParseWithClaims(
		token,
		&model.GuestClaim{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		},
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, errors.Wrap(err, "parse error")
	}

	claims, ok := t.Claims.(*model.GuestClaim)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	return claims, nil
}

// Claims returns the verified claims stored by Authenticator.
func Claims(ctx context.Context) (model.GuestClaim, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(model.GuestClaim)
	return c, ok
}

type Verifier interface {
	ValidateSession(ctx context.Context) error
}

func Authenticator(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				// Browsers cannot set headers on websocket upgrades.
				token = r.URL.Query().Get("access_token")
			}
			if token == "" {
				unauthorizedError(w, "No token provided")
				return
			}

			claims, err := Verify(token)
			if err != nil {
				unauthorizedError(w, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), CtxKeyClaims, *claims)
			ctx = context.WithValue(ctx, CtxKeyToken, token)

			if err := v.ValidateSession(ctx); err != nil {
				unauthorizedError(w, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || strings.ToLower(header[:len(prefix)]) != prefix {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorizedError(w http.ResponseWriter, detail string) {
	res := struct {
		Title  string `json:"title"`
		Status int    `json:"status"`
		Detail string `json:"detail"`
		Code   string `json:"code"`
	}{
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
		Detail: detail,
		Code:   "UNAUTHORIZED",
	}

	log.Warn().Msg(detail)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(res)
}
