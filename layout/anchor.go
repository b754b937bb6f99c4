package layout

// ReferenceGlyph is measured to approximate the line height. It is the glyph's
// advance width, not the font's ascent plus descent.
const ReferenceGlyph = "M"

// ComputeAnchor 根据对齐方式、偏移与显式坐标计算文本锚点。
// 显式坐标优先，对应轴的对齐与偏移会被忽略。
func ComputeAnchor(rows []TextRow, cfg Config, canvasWidth, canvasHeight, lineHeight float64) Anchor {
	var a Anchor

	switch {
	case cfg.PositionX.Valid:
		a.X, a.Horizontal = cfg.PositionX.Value, AlignLeft
	case cfg.AlignX == AlignRight:
		a.X, a.Horizontal = canvasWidth-cfg.OffsetX, AlignRight
	case cfg.AlignX == AlignLeft:
		a.X, a.Horizontal = cfg.OffsetX, AlignLeft
	default:
		a.X, a.Horizontal = canvasWidth/2, AlignCenter
	}

	if cfg.PositionY.Valid {
		a.Y, a.Baseline = cfg.PositionY.Value, BaselineTop
		return a
	}

	n := float64(len(rows))
	if n <= 1 {
		switch cfg.AlignY {
		case AlignTop:
			a.Y, a.Baseline = cfg.OffsetY, BaselineHanging
		case AlignMiddle:
			a.Y, a.Baseline = canvasHeight/2, BaselineMiddle
		default:
			a.Y, a.Baseline = canvasHeight-cfg.OffsetY, BaselineBottom
		}
		return a
	}

	stacked := (n - 1) * (lineHeight + cfg.RowGap)
	switch cfg.AlignY {
	case AlignTop:
		a.Y, a.Baseline = cfg.OffsetY, BaselineHanging
	case AlignMiddle:
		block := n*lineHeight + (n-1)*cfg.RowGap
		a.Y, a.Baseline = (canvasHeight-block)/2, BaselineTop
	default:
		a.Y, a.Baseline = canvasHeight-(stacked+cfg.OffsetY), BaselineBottom
	}
	return a
}

// Compute wraps text and places it on a canvas of the given size. It runs once per
// render; every frame reuses the result.
func Compute(text string, cfg Config, canvasWidth, canvasHeight int, m Measurer) *Result {
	w, h := float64(canvasWidth), float64(canvasHeight)
	maxWidth := cfg.WrapWidth(w)
	rows := WrapText(text, maxWidth, m)
	lineHeight := m.TextWidth(ReferenceGlyph)
	return &Result{
		Rows:       rows,
		Anchor:     ComputeAnchor(rows, cfg, w, h, lineHeight),
		LineHeight: lineHeight,
		RowGap:     cfg.RowGap,
		MaxWidth:   maxWidth,
	}
}
