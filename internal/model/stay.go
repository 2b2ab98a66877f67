package model

import "time"

type Stay struct {
	ID           string    `db:"id"`
	PropertyName string    `db:"property_name"`
	Address      string    `db:"address"`
	WifiName     string    `db:"wifi_name"`
	WifiPassword string    `db:"wifi_password"`
	HostPhone    string    `db:"host_phone"`
	CheckIn      time.Time `db:"check_in"`
	CheckOut     time.Time `db:"check_out"`
}

// Within reports whether t falls inside the stay, both ends included.
func (s *Stay) Within(t time.Time) bool {
	return !t.Before(s.CheckIn) && !t.After(s.CheckOut)
}
