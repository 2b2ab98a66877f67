package model

import "time"

type Checklist struct {
	Document    bool `json:"document"`
	Preferences bool `json:"preferences"`
	Contract    bool `json:"contract"`
}

func (c Checklist) Complete() bool {
	return c.Document && c.Preferences && c.Contract
}

type AccommodationInfo struct {
	PropertyName string    `json:"propertyName"`
	Address      string    `json:"address,omitempty"`
	WifiName     string    `json:"wifiName,omitempty"`
	WifiPassword string    `json:"wifiPassword,omitempty"`
	HostPhone    string    `json:"hostPhone"`
	CheckIn      time.Time `json:"checkIn"`
	CheckOut     time.Time `json:"checkOut"`
}

type DashboardResponse struct {
	Accommodation AccommodationInfo `json:"accommodation"`
	Checklist     Checklist         `json:"checklist"`
	Incidents     []IncidentItem    `json:"incidents"`
}
