package domain

import "time"

// OrderRecord is the final snapshot of a filled reservation form. Every field
// is kept as text so the queued payload has a uniform schema.
type OrderRecord struct {
	Location       string `json:"Location"`
	Cuisine        string `json:"Cuisine"`
	Date           string `json:"Date"`
	Time           string `json:"time"`
	PhoneNumber    string `json:"Phone_Number"`
	NumberOfPeople string `json:"No_of_people"`
}

// NewOrderRecord snapshots the slot set; unset slots become empty strings
func NewOrderRecord(slots Slots) OrderRecord {
	return OrderRecord{
		Location:       slots.Get(SlotLocation),
		Cuisine:        slots.Get(SlotCuisine),
		Date:           slots.Get(SlotDate),
		Time:           slots.Get(SlotTime),
		PhoneNumber:    slots.Get(SlotPhoneNumber),
		NumberOfPeople: slots.Get(SlotNumberOfPeople),
	}
}

// SubmissionReceipt acknowledges that the queue accepted an order
type SubmissionReceipt struct {
	Queue      string    `json:"queue"`
	Bytes      int       `json:"bytes"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
