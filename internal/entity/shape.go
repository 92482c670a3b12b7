package entity

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// SQL renders the term, e.g. "created_at DESC".
func (o Order) SQL() string {
	if o.Desc {
		return o.Column + " DESC"
	}
	return o.Column + " ASC"
}

// Include is an association to eager-load, with its own ordering and
// nested associations.
type Include struct {
	Kind    Kind
	Order   []Order
	Include []Include
}

// Shape is the read-query shape of a kind: the top-level ordering plus the
// associations loaded alongside every row.
type Shape struct {
	Order   []Order
	Include []Include
}

var (
	newestFirst = []Order{{Column: "created_at", Desc: true}, {Column: "id", Desc: true}}
	byPosition  = []Order{{Column: "position"}, {Column: "id"}}
)

// Shape returns the read-query shape of k. Unknown kinds get the empty shape.
func (k Kind) Shape() Shape {
	switch k {
	case User:
		return Shape{
			Order: newestFirst,
			Include: []Include{{
				Kind:  Album,
				Order: newestFirst,
				Include: []Include{{
					Kind:  Song,
					Order: byPosition,
				}},
			}},
		}
	case Album:
		return Shape{
			Order: newestFirst,
			Include: []Include{
				{Kind: User},
				{Kind: Song, Order: byPosition},
			},
		}
	case Song:
		return Shape{
			Order: newestFirst,
			Include: []Include{{
				Kind:    Album,
				Include: []Include{{Kind: User}},
			}},
		}
	default:
		return Shape{}
	}
}
