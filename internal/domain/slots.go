package domain

import "strings"

// SlotName is the wire name of a slot as the NLU engine reports it
type SlotName string

const (
	SlotLocation       SlotName = "Location"
	SlotCuisine        SlotName = "Cuisine"
	SlotDate           SlotName = "Date"
	SlotTime           SlotName = "time"
	SlotPhoneNumber    SlotName = "Phone_Number"
	SlotNumberOfPeople SlotName = "No_of_people"
)

// SlotOrder is the order in which slots are validated. Only the first
// violation in this order is ever reported.
var SlotOrder = []SlotName{
	SlotLocation,
	SlotCuisine,
	SlotDate,
	SlotTime,
	SlotPhoneNumber,
	SlotNumberOfPeople,
}

// Slots maps a slot name to its optional value. A nil value (JSON null) or an
// empty string means the slot has not been filled yet.
type Slots map[string]*string

// NewSlots builds a slot set from plain values, skipping empty ones
func NewSlots(values map[SlotName]string) Slots {
	s := make(Slots, len(values))
	for name, v := range values {
		if v == "" {
			continue
		}
		s.Set(name, v)
	}
	return s
}

// Get returns the trimmed slot value, or "" when the slot is unset
func (s Slots) Get(name SlotName) string {
	if s == nil {
		return ""
	}
	v := s[string(name)]
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

// Has reports whether the slot holds a non-empty value
func (s Slots) Has(name SlotName) bool {
	return s.Get(name) != ""
}

func (s Slots) Set(name SlotName, value string) {
	v := value
	s[string(name)] = &v
}

// Clear marks the slot as absent while keeping its key
func (s Slots) Clear(name SlotName) {
	s[string(name)] = nil
}

// Clone returns a deep copy so callers can modify the result freely
func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for k, v := range s {
		if v == nil {
			out[k] = nil
			continue
		}
		cp := *v
		out[k] = &cp
	}
	return out
}
