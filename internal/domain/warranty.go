package domain

const (
	WarrantyPending  = "pending"
	WarrantyAccepted = "accepted"
	WarrantyRejected = "rejected"
)

// ValidWarrantyStatus reports whether s is one of the known statuses.
func ValidWarrantyStatus(s string) bool {
	switch s {
	case WarrantyPending, WarrantyAccepted, WarrantyRejected:
		return true
	}
	return false
}

// CanTransition allows only pending -> accepted and pending -> rejected.
func CanTransition(from, to string) bool {
	return from == WarrantyPending && (to == WarrantyAccepted || to == WarrantyRejected)
}

// HoldsSerial reports whether a registration in this status keeps its
// serial marked as registered.
func HoldsSerial(status string) bool {
	return status == WarrantyPending || status == WarrantyAccepted
}
