package layout

import (
	"encoding/json"
	"os"
)

type rowPlacement struct {
	Row int     `json:"row"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

type debugDump struct {
	Config Config         `json:"config"`
	Layout *Result        `json:"layout"`
	Draw   []rowPlacement `json:"draw"`
}

// WriteDebugJSON 将布局结果与每行绘制坐标（按绘制顺序）输出为 JSON，便于调试。
func WriteDebugJSON(res *Result, cfg Config, path string) error {
	if res == nil {
		return nil
	}
	dump := debugDump{Config: cfg, Layout: res}
	for _, i := range res.DrawOrder() {
		x, y := res.RowOrigin(i)
		dump.Draw = append(dump.Draw, rowPlacement{Row: i, X: x, Y: y})
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
