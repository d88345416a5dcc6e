package dto

// CreateReservationRequest maps trip IDs to the number of capacity blocks
// to reserve on each. Entries with zero or negative capacity are ignored.
type CreateReservationRequest struct {
	Selections map[string]int `json:"selections"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}
