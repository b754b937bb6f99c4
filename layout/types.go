package layout

// 该文件定义布局结果，供合成、渲染与调试 JSON 共用。坐标单位均为像素，原点在左上角。

// HAlign 表示水平锚点模式。
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

func (a HAlign) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	default:
		return "center"
	}
}

// MarshalText lets the debug JSON show "left"/"center"/"right".
func (a HAlign) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// VAlign 表示配置中的垂直对齐方式。
type VAlign int

const (
	AlignTop VAlign = iota
	AlignMiddle
	AlignBottom
)

func (a VAlign) String() string {
	switch a {
	case AlignTop:
		return "top"
	case AlignMiddle:
		return "middle"
	default:
		return "bottom"
	}
}

func (a VAlign) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Baseline is the vertical anchor mode the surface uses to place a row at its y coordinate.
type Baseline int

const (
	BaselineBottom Baseline = iota
	BaselineTop
	BaselineHanging
	BaselineMiddle
)

func (b Baseline) String() string {
	switch b {
	case BaselineTop:
		return "top"
	case BaselineHanging:
		return "hanging"
	case BaselineMiddle:
		return "middle"
	default:
		return "bottom"
	}
}

func (b Baseline) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// TextRow 表示换行后的一行文本及其测量宽度（像素）。
type TextRow struct {
	Content string  `json:"content"`
	Width   float64 `json:"width"`
}

// Anchor 是 ComputeAnchor 的结果。
type Anchor struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Horizontal HAlign   `json:"horizontal"`
	Baseline   Baseline `json:"baseline"`
}

// Result 保存一次渲染计算出的行与锚点；每次渲染只计算一次，所有帧复用。
// Rows 至少包含一行（空文本得到一个空行）。
type Result struct {
	Rows       []TextRow `json:"rows"`
	Anchor     Anchor    `json:"anchor"`
	LineHeight float64   `json:"lineHeight"`
	RowGap     float64   `json:"rowGap"`
	MaxWidth   float64   `json:"maxWidth"`
}

// RowOrigin returns the draw position of row i. Rows are stacked upward from the
// anchor: the last row sits at the anchor and every earlier row is lifted by one
// line height plus row gap.
func (r *Result) RowOrigin(i int) (x, y float64) {
	step := float64(len(r.Rows)-1-i) * (r.LineHeight + r.RowGap)
	return r.Anchor.X, r.Anchor.Y - step
}

// DrawOrder returns row indexes in the order they are drawn: last row first.
func (r *Result) DrawOrder() []int {
	order := make([]int, len(r.Rows))
	for i := range order {
		order[i] = len(r.Rows) - 1 - i
	}
	return order
}
