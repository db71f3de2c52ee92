package enums

import "fmt"

// SpaceStatus is the cached projection of a media space's leases.
type SpaceStatus string

const (
	SpaceStatusAvailable SpaceStatus = "available"
	SpaceStatusLeased    SpaceStatus = "leased"
)

var validSpaceStatuses = []SpaceStatus{
	SpaceStatusAvailable,
	SpaceStatusLeased,
}

// String implements fmt.Stringer.
func (s SpaceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SpaceStatus.
func (s SpaceStatus) IsValid() bool {
	for _, candidate := range validSpaceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSpaceStatus converts raw input into a SpaceStatus.
func ParseSpaceStatus(value string) (SpaceStatus, error) {
	for _, candidate := range validSpaceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid space status %q", value)
}
