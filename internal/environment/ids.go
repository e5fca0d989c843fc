package environment

import "github.com/google/uuid"

// ToShortID derives the short identifier used in namespaces and resource
// names: "z" followed by the first 8 characters of the UUID.
func ToShortID(id uuid.UUID) string {
	return "z" + id.String()[:8]
}
