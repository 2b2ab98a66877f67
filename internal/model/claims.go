package model

import "github.com/golang-jwt/jwt/v5"

type GuestClaim struct {
	jwt.RegisteredClaims
	ID     string `json:"id"`
	StayID string `json:"stayId"`
	Role   string `json:"role"`
	SID    string `json:"sid"`
}
