package model

import "time"

type GenderRestriction string

const (
	GenderMale   GenderRestriction = "male"
	GenderFemale GenderRestriction = "female"
	GenderMixed  GenderRestriction = "mixed"
)

type Hostel struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	HostelCampus      string            `json:"hostel_campus"`
	Block             string            `json:"block"`
	Floor             string            `json:"floor"`
	Location          string            `json:"location"`
	GenderRestriction GenderRestriction `json:"gender_restriction"`
	Description       string            `json:"description"`
	CreatedAt         time.Time         `json:"created_at"`
}

// HostelStats публичная статистика по кроватям
type HostelStats struct {
	Hostels       int `json:"hostels"`
	AvailableBeds int `json:"available_beds"`
	OccupiedBeds  int `json:"occupied_beds"`
	Campuses      int `json:"campuses"`
}
