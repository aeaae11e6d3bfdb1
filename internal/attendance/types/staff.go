package types

// StaffMember is owned by the staff directory. The attendance engine only
// reads it.
type StaffMember struct {
	StaffID    string `json:"staff_id"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
	IsActive   bool   `json:"is_active"`
}
