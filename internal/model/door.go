package model

import "time"

const UnlockMethodRemote = "remote"

type UnlockEvent struct {
	ID        string    `db:"id"`
	StayID    string    `db:"stay_id"`
	GuestID   string    `db:"guest_id"`
	Method    string    `db:"method"`
	CreatedAt time.Time `db:"created_at"`
}

type DoorCode struct {
	StayID    string    `db:"stay_id"`
	GuestID   string    `db:"guest_id"`
	CodeHash  string    `db:"code_hash"`
	ExpiresAt time.Time `db:"expires_at"`
}

type UnlockResponse struct {
	UnlockedAt time.Time `json:"unlockedAt"`
}

type DoorCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}
