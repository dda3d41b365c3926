// Package fallback holds the precomputed canned replies used when the
// narration backend cannot answer a known quick command.
package fallback

import "sort"

// Entry is one canned quick-command reply: the prompt sent to the backend on
// the happy path, and the full narration/navigation payload applied verbatim
// when that exchange fails.
type Entry struct {
	Key         string
	Label       string
	Description string
	Prompt      string
	Destination string
	Directions  []string
	Narration   string
}

// The quick-command set is closed: defined here at init, never mutated.
var entries = map[string]Entry{
	"cafe": {
		Key:         "cafe",
		Label:       "Campus Cafe",
		Description: "Grab a coffee or a quick bite",
		Prompt:      "Take me to the campus cafe",
		Destination: "Campus Cafe",
		Directions: []string{
			"Head east across the main plaza",
			"Pass the fountain and keep the library on your left",
			"The cafe entrance is under the glass canopy",
		},
		Narration: "The campus cafe is just east of the main plaza. Follow me and we'll be sipping something warm in no time.",
	},
	"gym": {
		Key:         "gym",
		Label:       "Sports Complex",
		Description: "Gym, courts, and the pool",
		Prompt:      "Where is the gym",
		Destination: "Sports Complex",
		Directions: []string{
			"Exit the main building through the south doors",
			"Follow the covered walkway past the parking area",
			"The sports complex is the large hall on your right",
		},
		Narration: "The sports complex sits south of the main building. It has the gym, the courts, and the pool all under one roof.",
	},
	"library": {
		Key:         "library",
		Label:       "Central Library",
		Description: "Books, study rooms, quiet floors",
		Prompt:      "Guide me to the library",
		Destination: "Central Library",
		Directions: []string{
			"Walk north through the academic courtyard",
			"Take the wide staircase up one level",
			"The library doors face the courtyard clock",
		},
		Narration: "The central library is north of the academic courtyard, one level up. The quiet floors are at the top.",
	},
	"admission": {
		Key:         "admission",
		Label:       "Admission Office",
		Description: "Applications and student affairs",
		Prompt:      "Take me to the admission office",
		Destination: "Admission Office",
		Directions: []string{
			"Start at the main gate reception",
			"Follow the blue floor line to building A",
			"The admission office is the first door on the ground floor",
		},
		Narration: "The admission office is in building A, right off the main gate. Follow the blue line and you can't miss it.",
	},
	"clinic": {
		Key:         "clinic",
		Label:       "Medical Clinic",
		Description: "First aid and campus health services",
		Prompt:      "Where is the medical clinic",
		Destination: "Medical Clinic",
		Directions: []string{
			"Head west along the dormitory path",
			"Turn right at the pharmacy sign",
			"The clinic entrance has a green cross above it",
		},
		Narration: "The medical clinic is on the west side near the dormitories. Look for the green cross above the entrance.",
	},
	"prayer": {
		Key:         "prayer",
		Label:       "Prayer Room",
		Description: "Quiet space for prayer",
		Prompt:      "Guide me to the prayer room",
		Destination: "Prayer Room",
		Directions: []string{
			"Go to the second floor of the student center",
			"Turn left at the top of the stairs",
			"The prayer room is at the end of the corridor",
		},
		Narration: "The prayer room is on the second floor of the student center, at the end of the left corridor.",
	},
}

// Resolve looks up the canned entry for a quick-command key. The key set is
// closed, so a false return means the caller passed something that was never
// a quick command.
func Resolve(key string) (Entry, bool) {
	entry, ok := entries[key]
	return entry, ok
}

// Keys returns the quick-command identifiers in stable order.
func Keys() []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
