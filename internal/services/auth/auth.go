package auth

import (
	"context"
	"strings"
	"time"

	"github.com/Heidric/guest-self-service/internal/lib/jwt"
	"github.com/Heidric/guest-self-service/internal/logger"
	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var log zerolog.Logger

const (
	hostAccessTokenTTL = time.Minute * 30
	refreshTokenTTL    = time.Hour * 24 * 30
)

var (
	ErrTokenNotFound      = errors.New("token not found")
	ErrGuestNotFound      = errors.New("guest not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthStorage interface {
	GetGuestByReservationCode(ctx context.Context, code string) (*model.Guest, error)
	GetGuestByID(ctx context.Context, id string) (*model.Guest, error)
	CreateSession(ctx context.Context, session *model.Session) error
	GetSessionBySID(ctx context.Context, sID string) (*model.Session, error)
	GetSessionByRToken(ctx context.Context, rToken string) (*model.Session, error)
	DeleteSessionByID(ctx context.Context, sID string) error
}

type Auth struct {
	storage AuthStorage
	now     func() time.Time
}

func New(storage AuthStorage) *Auth {
	log = logger.Log.With().Str("name", "auth-service").Logger()

	return &Auth{storage: storage, now: time.Now}
}

func (a *Auth) ValidateSession(ctx context.Context) error {
	claims, ok := jwt.Claims(ctx)
	if !ok {
		return errors.New("claims missing")
	}
	token, _ := ctx.Value(jwt.CtxKeyToken).(string)

	session, err := a.storage.GetSessionBySID(ctx, claims.SID)
	if err != nil {
		return errors.Wrap(err, "session not found")
	}

	if session.GuestID != claims.ID {
		return errors.New("session not valid")
	}

	if token != session.AccessToken {
		return errors.New("token not valid")
	}

	return nil
}

func (a *Auth) Login(ctx context.Context, reservationCode, accessCode string) (*model.LoginResponse, error) {
	guest, err := a.storage.GetGuestByReservationCode(ctx, strings.ToUpper(strings.TrimSpace(reservationCode)))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEntityNotFound):
			return nil, ErrInvalidCredentials
		default:
			return nil, errors.Wrap(err, "login")
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(guest.AccessCodeHash), []byte(accessCode)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return a.issue(ctx, guest)
}

func (a *Auth) RefreshToken(ctx context.Context, refreshToken string) (*model.RefreshTokenResponse, error) {
	session, err := a.storage.GetSessionByRToken(ctx, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEntityNotFound):
			return nil, ErrTokenNotFound
		default:
			return nil, errors.Wrap(err, "refresh token")
		}
	}

	if session.ExpiresAt.Before(a.now()) {
		if err := a.storage.DeleteSessionByID(ctx, session.ID); err != nil {
			return nil, errors.Wrap(err, "delete expired session")
		}
		return nil, ErrTokenNotFound
	}

	guest, err := a.storage.GetGuestByID(ctx, session.GuestID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEntityNotFound):
			return nil, ErrGuestNotFound
		default:
			return nil, errors.Wrap(err, "refresh token")
		}
	}

	if err := a.storage.DeleteSessionByID(ctx, session.ID); err != nil {
		return nil, errors.Wrap(err, "delete session")
	}

	return a.issue(ctx, guest)
}

func (a *Auth) Logout(ctx context.Context) error {
	claims, ok := jwt.Claims(ctx)
	if !ok {
		return ErrInvalidCredentials
	}

	if err := a.storage.DeleteSessionByID(ctx, claims.SID); err != nil && !errors.Is(err, storage.ErrEntityNotFound) {
		return errors.Wrap(err, "logout")
	}
	return nil
}

func (a *Auth) issue(ctx context.Context, guest *model.Guest) (*model.LoginResponse, error) {
	sID := uuid.NewString()

	ttl := jwt.AccessTTL()
	if guest.Role == model.RoleHost {
		ttl = hostAccessTokenTTL
	}

	accessToken, err := jwt.NewToken(model.JwtDTO{
		ID:     guest.ID,
		StayID: guest.StayID,
		Role:   guest.Role,
		SID:    sID,
	}, ttl)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate access token")
		return nil, errors.Wrap(err, "generate access token")
	}

	refreshToken, err := jwt.NewToken(model.JwtDTO{
		ID:  guest.ID,
		SID: sID,
	}, refreshTokenTTL)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate refresh token")
		return nil, errors.Wrap(err, "generate refresh token")
	}

	if err := a.storage.CreateSession(ctx, &model.Session{
		ID:           sID,
		GuestID:      guest.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    a.now().Add(refreshTokenTTL),
	}); err != nil {
		return nil, errors.Wrap(err, "create session")
	}

	log.Info().Str("guestId", guest.ID).Str("sid", sID).Msg("session created")

	return &model.LoginResponse{
		TokenType:    "Bearer",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
