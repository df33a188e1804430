package toplogger

// Gym mirrors an entry of GET /gyms.
type Gym struct {
	ID        int64  `json:"id"`
	IDName    string `json:"id_name"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	NameShort string `json:"name_short"`
}

// ReservationArea mirrors an entry of GET /gyms/{id}/reservation_areas.
type ReservationArea struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Slot mirrors an entry of GET /gyms/{id}/slots?slim=true.
type Slot struct {
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at,omitempty"`
	SpotsBooked int    `json:"spots_booked"`
	Spots       int    `json:"spots"`
}

// SlotQuery configures /gyms/{id}/slots requests.
type SlotQuery struct {
	GymID  int64
	AreaID int64
	Date   string
}
