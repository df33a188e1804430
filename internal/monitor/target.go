package monitor

import (
	"fmt"
	"strings"
)

// Gym is a resolved facility.
type Gym struct {
	ID        int64
	IDName    string
	Slug      string
	Name      string
	NameShort string
}

// Label returns the shortest human name the gym carries.
func (g Gym) Label() string {
	for _, name := range []string{g.NameShort, g.Name, g.IDName, g.Slug} {
		if strings.TrimSpace(name) != "" {
			return name
		}
	}
	return fmt.Sprintf("gym-%d", g.ID)
}

// Area is a reservable zone within a gym.
type Area struct {
	ID    int64
	Name  string
	GymID int64
}

// Target is one resolved monitoring request. It is never mutated once built.
type Target struct {
	Gym       Gym
	Area      Area
	Date      string
	TimeSlot  string
	Threshold int
}

// Key identifies the target in logs, metrics and the status store as
// "gymID:areaID@date/time_slot#threshold".
func (t Target) Key() string {
	return fmt.Sprintf("%d:%d@%s/%s#%d", t.Gym.ID, t.Area.ID, t.Date, t.TimeSlot, t.Threshold)
}

// Place renders "gym:area".
func (t Target) Place() string {
	return t.Gym.Label() + ":" + t.Area.Name
}

func (t Target) String() string {
	return fmt.Sprintf("Looking for %d spots (%s for %s at %s)", t.Threshold, t.Place(), t.Date, t.TimeSlot)
}
