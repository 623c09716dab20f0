package superset

// Kind identifies one of the four provisionable resource types. The set is
// closed: dispatch happens through the Spec implementations in specs.go, never
// through string comparison on kind names.
type Kind int

const (
	KindDatabase Kind = iota
	KindDataset
	KindChart
	KindDashboard
)

// String returns the human-readable kind name used in logs and summaries.
func (k Kind) String() string {
	switch k {
	case KindDatabase:
		return "database"
	case KindDataset:
		return "dataset"
	case KindChart:
		return "chart"
	case KindDashboard:
		return "dashboard"
	default:
		return "unknown"
	}
}

// Path returns the REST collection path for the kind. The same path serves
// listing (GET) and creation (POST).
func (k Kind) Path() string {
	switch k {
	case KindDatabase:
		return "/api/v1/database/"
	case KindDataset:
		return "/api/v1/dataset/"
	case KindChart:
		return "/api/v1/chart/"
	case KindDashboard:
		return "/api/v1/dashboard/"
	default:
		return ""
	}
}

// Row is a single entry from a kind's listing endpoint. Listings are decoded
// loosely because each kind exposes a different field set.
type Row map[string]any

// ID extracts the backend-assigned numeric id from a listing or creation row.
// Returns zero when the field is missing or not a number.
func (r Row) ID() int64 {
	v, ok := r["id"]
	if !ok {
		return 0
	}
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return int64(f)
}

func (r Row) str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Payload is one creation request body. Specs produce an ordered list of
// payloads which the upserter tries in sequence.
type Payload map[string]any

// Spec describes a desired resource: its kind, its natural key, how to
// recognize it in a listing, and the ordered creation payloads to try.
type Spec interface {
	Kind() Kind

	// Name is the natural key used for logs and the run summary.
	Name() string

	// Matches reports whether a listing row refers to this resource. The
	// comparison is an exact, case-sensitive match on the kind's natural-key
	// field; server-side filters are not trusted to be authoritative.
	Matches(row Row) bool

	// Payloads returns the creation bodies in the order they should be
	// attempted. Most kinds have exactly one; virtual datasets have a second
	// attempt with a forced schema field.
	Payloads() []Payload
}
