package models

import "time"

// AvailabilitySlot is a fixed calendar window for admission visits.
// Bookable while current_appointments < max_appointments.
type AvailabilitySlot struct {
	ID                  string    `bson:"id" json:"id"`
	OrganizationID      string    `bson:"organization_id" json:"organization_id"`
	StartTime           time.Time `bson:"start_time" json:"start_time"`
	EndTime             time.Time `bson:"end_time" json:"end_time"`
	MaxAppointments     int       `bson:"max_appointments" json:"max_appointments"`
	CurrentAppointments int       `bson:"current_appointments" json:"current_appointments"`
	CreatedAt           time.Time `bson:"created_at" json:"created_at"`
}

// HasCapacity reports whether the slot can take one more appointment.
func (s AvailabilitySlot) HasCapacity() bool {
	return s.CurrentAppointments < s.MaxAppointments
}

// SlotOption maps a human-friendly ordinal to an opaque slot identifier.
// A full ordered set is regenerated wholesale by each availability search.
type SlotOption struct {
	Ordinal   int       `bson:"ordinal" json:"ordinal"`
	SlotID    string    `bson:"slot_id" json:"slot_id"`
	StartTime time.Time `bson:"start_time" json:"start_time"`
	EndTime   time.Time `bson:"end_time" json:"end_time"`
}
