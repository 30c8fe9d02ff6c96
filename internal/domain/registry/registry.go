// Package registry holds the car and class rosters built up from
// registration records.
//
// The registry is owned by the dispatch loop and is not safe for
// concurrent use. Lookups for unregistered keys return the zero value
// rather than an error: position rows routinely arrive before the
// registration records they reference, and the standings recompute picks
// the name up once it lands.
package registry

// Registry maps car registration numbers to display names and class
// assignments, and class numbers to descriptions. All writes are
// last-write-wins.
type Registry struct {
	carNames   map[string]string
	carClasses map[string]string
	classes    map[string]string
}

// New creates an empty Registry.
func New() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// SetCar records a car's display name.
func (r *Registry) SetCar(regNo, name string) {
	r.carNames[regNo] = name
}

// SetCarClass assigns a car to a class.
func (r *Registry) SetCarClass(regNo, classNo string) {
	r.carClasses[regNo] = classNo
}

// SetClass records a class description.
func (r *Registry) SetClass(classNo, description string) {
	r.classes[classNo] = description
}

// CarName returns the display name for a car, or "" if unregistered.
func (r *Registry) CarName(regNo string) string {
	return r.carNames[regNo]
}

// CarClass returns the class number a car is assigned to, or "" if none.
func (r *Registry) CarClass(regNo string) string {
	return r.carClasses[regNo]
}

// ClassName returns a class description, or "" if unregistered.
func (r *Registry) ClassName(classNo string) string {
	return r.classes[classNo]
}

// Classes returns every registered class number.
func (r *Registry) Classes() []string {
	out := make([]string, 0, len(r.classes))
	for no := range r.classes {
		out = append(out, no)
	}
	return out
}

// Reset clears all three maps in one step.
func (r *Registry) Reset() {
	r.carNames = make(map[string]string)
	r.carClasses = make(map[string]string)
	r.classes = make(map[string]string)
}
