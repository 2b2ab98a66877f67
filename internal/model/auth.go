package model

import (
	"strings"
	"time"
)

type Session struct {
	ID           string    `db:"id" json:"id"`
	GuestID      string    `db:"guest_id" json:"guestId"`
	AccessToken  string    `db:"access_token" json:"accessToken"`
	RefreshToken string    `db:"refresh_token" json:"refreshToken"`
	ExpiresAt    time.Time `db:"expires_at" json:"expiresAt"`
}

type LoginDTO struct {
	Validator
	ReservationCode string `json:"reservationCode"`
	AccessCode      string `json:"accessCode"`
}

type RefreshTokenDTO struct {
	Validator
	RefreshToken string `json:"refreshToken"`
}

func (dto *LoginDTO) Validate() map[string]string {
	err := make(map[string]string)

	code := strings.TrimSpace(dto.ReservationCode)
	if code == "" {
		err["reservationCode"] = ErrEmptyField
	} else if len(code) > 32 {
		err["reservationCode"] = ErrInvalidField
	}

	if dto.AccessCode == "" {
		err["accessCode"] = ErrEmptyField
	}

	return err
}

func (dto *RefreshTokenDTO) Validate() map[string]string {
	err := make(map[string]string)
	if dto.RefreshToken == "" {
		err["refreshToken"] = ErrEmptyField
	}
	return err
}

type LoginResponse struct {
	TokenType    string `json:"tokenType"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse = LoginResponse

type JwtDTO struct {
	ID     string `json:"id"`
	StayID string `json:"stayId"`
	Role   string `json:"role"`
	SID    string `json:"sid"`
}
