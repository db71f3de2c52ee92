package enums

import "fmt"

// LeaseStatus is the fixed fulfillment pipeline a lease moves through. Values
// match the seeded ids of the statuses table.
type LeaseStatus int

const (
	LeaseStatusRecibido         LeaseStatus = 1
	LeaseStatusAsignado         LeaseStatus = 2
	LeaseStatusEncendido        LeaseStatus = 3
	LeaseStatusEvidenciaEnviada LeaseStatus = 4
	LeaseStatusReporteEnviado   LeaseStatus = 5
	LeaseStatusFacturado        LeaseStatus = 6
	LeaseStatusCompletado       LeaseStatus = 7
)

// LeaseStatusSequence lists the pipeline in order. Completado is terminal.
var LeaseStatusSequence = []LeaseStatus{
	LeaseStatusRecibido,
	LeaseStatusAsignado,
	LeaseStatusEncendido,
	LeaseStatusEvidenciaEnviada,
	LeaseStatusReporteEnviado,
	LeaseStatusFacturado,
	LeaseStatusCompletado,
}

var leaseStatusNames = map[LeaseStatus]string{
	LeaseStatusRecibido:         "Recibido",
	LeaseStatusAsignado:         "Asignado",
	LeaseStatusEncendido:        "Encendido",
	LeaseStatusEvidenciaEnviada: "Evidencia Enviada",
	LeaseStatusReporteEnviado:   "Reporte Enviado",
	LeaseStatusFacturado:        "Facturado",
	LeaseStatusCompletado:       "Completado",
}

// String implements fmt.Stringer.
func (s LeaseStatus) String() string {
	if name, ok := leaseStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("LeaseStatus(%d)", int(s))
}

// IsValid reports whether the value is part of the pipeline.
func (s LeaseStatus) IsValid() bool {
	_, ok := leaseStatusNames[s]
	return ok
}

// IsActive reports whether a lease in this status still occupies capacity.
func (s LeaseStatus) IsActive() bool {
	return s != LeaseStatusCompletado
}

// IsTerminal reports whether no further pipeline step exists.
func (s LeaseStatus) IsTerminal() bool {
	return s == LeaseStatusCompletado
}

// Next returns the adjacent later status. ok is false at the end of the pipeline.
func (s LeaseStatus) Next() (LeaseStatus, bool) {
	if !s.IsValid() || s == LeaseStatusCompletado {
		return s, false
	}
	return s + 1, true
}

// Prev returns the adjacent earlier status. ok is false at the start of the pipeline.
func (s LeaseStatus) Prev() (LeaseStatus, bool) {
	if !s.IsValid() || s == LeaseStatusRecibido {
		return s, false
	}
	return s - 1, true
}

// Step moves one position in the given direction.
func (s LeaseStatus) Step(direction Direction) (LeaseStatus, bool) {
	switch direction {
	case DirectionNext:
		return s.Next()
	case DirectionPrev:
		return s.Prev()
	default:
		return s, false
	}
}

// ParseLeaseStatus converts a status id into a LeaseStatus.
func ParseLeaseStatus(id int) (LeaseStatus, error) {
	s := LeaseStatus(id)
	if !s.IsValid() {
		return 0, fmt.Errorf("invalid lease status %d", id)
	}
	return s, nil
}

// Direction is a pipeline move requested by the board.
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

var validDirections = []Direction{
	DirectionNext,
	DirectionPrev,
}

// String implements fmt.Stringer.
func (d Direction) String() string {
	return string(d)
}

// IsValid reports whether the value is a known Direction.
func (d Direction) IsValid() bool {
	for _, candidate := range validDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDirection converts raw input into a Direction.
func ParseDirection(value string) (Direction, error) {
	for _, candidate := range validDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid direction %q", value)
}
