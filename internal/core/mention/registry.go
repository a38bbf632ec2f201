package mention

import "sort"

// Registry maps a microphone or seat number to the speaker last seen holding it
type Registry struct {
	seats map[string]string
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{seats: make(map[string]string, 16)}
}

// Assign records name as the current occupant of number, replacing any previous one
func (r *Registry) Assign(number, name string) {
	if number == "" || name == "" {
		return
	}
	r.seats[canonicalNumber(number)] = name
}

// Occupant returns the speaker currently holding number
func (r *Registry) Occupant(number string) (string, bool) {
	name, ok := r.seats[canonicalNumber(number)]
	return name, ok
}

// Len is the number of known seats
func (r *Registry) Len() int { return len(r.seats) }

// Seat is one registry row
type Seat struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

// Seats lists the registry ordered by number
func (r *Registry) Seats() []Seat {
	out := make([]Seat, 0, len(r.seats))
	for n, name := range r.seats {
		out = append(out, Seat{Number: n, Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Number) != len(out[j].Number) {
			return len(out[i].Number) < len(out[j].Number)
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// canonicalNumber drops leading zeros so "03" and "3" name the same seat
func canonicalNumber(n string) string {
	i := 0
	for i < len(n)-1 && n[i] == '0' {
		i++
	}
	return n[i:]
}
