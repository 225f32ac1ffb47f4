package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds page/limit pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize enforces the configured defaults and bounds.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Page wraps one page of results in the wire shape the dashboard consumes.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// NewPage assembles the envelope, never returning a nil Data slice.
func NewPage[T any](data []T, total int64, params Params) Page[T] {
	n := params.Normalize()
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data:  data,
		Total: total,
		Page:  n.Page,
		Limit: n.Limit,
	}
}
