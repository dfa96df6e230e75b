package models

import "time"

// Appointment status values.
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment links a lead to exactly one availability slot.
type Appointment struct {
	ID             string    `bson:"id" json:"id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	LeadID         string    `bson:"lead_id" json:"lead_id"`
	SlotID         string    `bson:"slot_id" json:"slot_id"`
	Status         string    `bson:"status" json:"status"` // "scheduled" or "cancelled"
	CancelReason   string    `bson:"cancel_reason,omitempty" json:"cancel_reason,omitempty"`
	ScheduledFor   time.Time `bson:"scheduled_for" json:"scheduled_for"` // copy of the slot's start time
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
