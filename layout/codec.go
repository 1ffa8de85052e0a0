package layout

import (
	"encoding/json"
	"fmt"
	"io"
)

// EncodeModel 将模型以 JSON 写入 w，供外部持久化组件保存。引擎本身不打开任何文件。
func EncodeModel(w io.Writer, m *Model) error {
	if m == nil {
		return fmt.Errorf("模型为空")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("编码模型失败: %w", err)
	}
	return nil
}

// DecodeModel 从 r 读取 JSON 并补齐缺省结构。字段几何原样保留，违规尺寸在渲染时收敛。
func DecodeModel(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("解析模型 JSON 失败: %w", err)
	}
	if m.Fields == nil {
		m.Fields = LayoutProfile{}
	}
	if m.SlotFields == nil {
		m.SlotFields = map[Slot]LayoutProfile{}
	}
	for _, slot := range Slots() {
		if m.SlotFields[slot] == nil {
			m.SlotFields[slot] = LayoutProfile{}
		}
	}
	m.View.Zoom = NormalizeZoom(m.View.Zoom)
	return &m, nil
}
