// Package catalog is the immutable reference data: every location the game
// can assign, with its role set. Pure data, no game logic.
package catalog

type Category string

const (
	Education      Category = "education"
	Entertainment  Category = "entertainment"
	Business       Category = "business"
	Public         Category = "public"
	Transportation Category = "transportation"
)

type Location struct {
	Name        string
	Description string
	Category    Category
	Roles       []string
}

// All returns the full catalog. The returned slice is shared; callers must
// not mutate it.
func All() []Location {
	return locations
}

// Filter returns the locations belonging to any of the given categories.
// With no categories it behaves like All.
func Filter(categories ...Category) []Location {
	if len(categories) == 0 {
		return locations
	}
	out := make([]Location, 0, len(locations))
	for _, loc := range locations {
		for _, c := range categories {
			if loc.Category == c {
				out = append(out, loc)
				break
			}
		}
	}
	return out
}

func Categories() []Category {
	return []Category{Education, Entertainment, Business, Public, Transportation}
}
