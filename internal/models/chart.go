package models

type ChartKind string

const (
	ChartBar     ChartKind = "bar"
	ChartPie     ChartKind = "pie"
	ChartScatter ChartKind = "scatter"
	ChartLine    ChartKind = "line"
)

type Aggregate string

const (
	AggregateSum  Aggregate = "sum"
	AggregateNone Aggregate = "none"
)

// Point is a single chart datum. Categorical charts use Label and Y; scatter
// charts use X and Y and keep the originating country in Label.
type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// ChartSpec is a declarative description of a chart, rebuilt from scratch on
// every control change.
type ChartSpec struct {
	ID        string    `json:"id"`
	Kind      ChartKind `json:"kind"`
	Title     string    `json:"title"`
	XField    string    `json:"x_field"`
	YField    string    `json:"y_field"`
	Aggregate Aggregate `json:"aggregate"`
	Colors    []string  `json:"colors"`
	Points    []Point   `json:"points"`
	Rows      int       `json:"rows"`
}

func (c ChartSpec) Empty() bool {
	return len(c.Points) == 0
}
