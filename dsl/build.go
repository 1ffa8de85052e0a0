package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/checkpress/layout"
)

// Build 将版式描述应用到 base 的副本上并返回新模型；base 为空时以 layout.DefaultModel() 为基础。
// 字段声明是增量编辑：只覆盖出现的属性，未出现的属性保持原值。
func Build(doc *Document, base *layout.Model) (*layout.Model, error) {
	if doc == nil {
		return nil, fmt.Errorf("版式文档为空")
	}
	if base == nil {
		base = layout.DefaultModel()
	}
	m := base.Clone()
	if m.Fields == nil {
		m.Fields = layout.LayoutProfile{}
	}
	if m.SlotFields == nil {
		m.SlotFields = map[layout.Slot]layout.LayoutProfile{}
	}

	for _, st := range doc.Statements {
		var err error
		switch {
		case st.Field != nil:
			err = applyField(m.Fields, st.Field)
		case st.Slot != nil:
			err = applySlot(m, st.Slot)
		case st.Template != nil:
			err = applyTemplate(m, st.Template)
		case st.Setting != nil:
			err = applySetting(m, st.Setting)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func applyField(profile layout.LayoutProfile, decl *FieldDecl) error {
	spec := profile[decl.Key]
	for _, prop := range decl.Props {
		raw := prop.Value.Raw()
		switch strings.ToLower(prop.Key) {
		case "x":
			spec.X = parseInches(raw)
		case "y":
			spec.Y = parseInches(raw)
		case "w", "width":
			spec.W = parseInches(raw)
		case "h", "height":
			spec.H = parseInches(raw)
		case "font", "size":
			spec.FontIn = parseInches(raw)
		case "label":
			spec.Label = raw
		default:
			return fmt.Errorf("%s: 字段 %s 不支持属性 %q", prop.Pos, decl.Key, prop.Key)
		}
	}
	profile[decl.Key] = spec
	return nil
}

func applySlot(m *layout.Model, decl *SlotDecl) error {
	slot := layout.Slot(strings.ToLower(decl.Name))
	switch slot {
	case layout.SlotTop, layout.SlotMiddle, layout.SlotBottom:
	default:
		return fmt.Errorf("%s: 未知槽位 %q（可选 top/middle/bottom）", decl.Pos, decl.Name)
	}
	profile := m.SlotFields[slot]
	if profile == nil {
		profile = layout.LayoutProfile{}
	}
	for _, f := range decl.Fields {
		if err := applyField(profile, f); err != nil {
			return err
		}
	}
	m.SlotFields[slot] = profile
	return nil
}

func applyTemplate(m *layout.Model, decl *TemplateDecl) error {
	tpl := layout.Template{Src: decl.Src, Opacity: 1, Fit: layout.FitStretch}
	for _, opt := range decl.Options {
		raw := opt.Value.Raw()
		switch strings.ToLower(opt.Key) {
		case "opacity":
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("%s: 模板透明度 %q 无效", decl.Pos, raw)
			}
			tpl.Opacity = v
		case "fit":
			tpl.Fit = strings.ToLower(raw)
		default:
			return fmt.Errorf("%s: 模板不支持选项 %q", decl.Pos, opt.Key)
		}
	}
	m.Template = &tpl
	return nil
}

func applySetting(m *layout.Model, s *Setting) error {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.Raw()
	}
	need := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%s: %s 需要至少 %d 个参数", s.Pos, s.Name, n)
		}
		return nil
	}

	switch strings.ToLower(s.Name) {
	case "page":
		if err := need(1); err != nil {
			return err
		}
		if page, ok := layout.LookupPage(args[0]); ok {
			m.Page = page
			return nil
		}
		if err := need(2); err != nil {
			return fmt.Errorf("%s: 未知纸张 %q", s.Pos, args[0])
		}
		m.Page = layout.Page{Size: "custom", WidthIn: parseInches(args[0]), HeightIn: parseInches(args[1])}
	case "placement":
		if err := need(2); err != nil {
			return err
		}
		m.Placement = layout.Placement{X: parseInches(args[0]), Y: parseInches(args[1])}
	case "width":
		if err := need(1); err != nil {
			return err
		}
		m.Layout.WidthIn = parseInches(args[0])
	case "check":
		if err := need(1); err != nil {
			return err
		}
		m.Layout.CheckHeightIn = parseInches(args[0])
	case "stub1", "stub2":
		if err := need(1); err != nil {
			return err
		}
		enabled, err := parseSwitch(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", s.Pos, err)
		}
		height := -1.0
		if len(args) > 1 {
			height = parseInches(args[1])
		}
		if strings.EqualFold(s.Name, "stub1") {
			m.Layout.Stub1Enabled = enabled
			if height >= 0 {
				m.Layout.Stub1HeightIn = height
			}
		} else {
			m.Layout.Stub2Enabled = enabled
			if height >= 0 {
				m.Layout.Stub2HeightIn = height
			}
		}
	case "cutlines":
		m.Layout.CutLine1In, m.Layout.CutLine2In = nil, nil
		if len(args) > 0 {
			v := parseInches(args[0])
			m.Layout.CutLine1In = &v
		}
		if len(args) > 1 {
			v := parseInches(args[1])
			m.Layout.CutLine2In = &v
		}
	case "zoom":
		if err := need(1); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("%s: 缩放值 %q 无效", s.Pos, args[0])
		}
		m.View.Zoom = layout.NormalizeZoom(v)
	default:
		return fmt.Errorf("%s: 未知设置 %q", s.Pos, s.Name)
	}
	return nil
}

// parseInches 解析带单位的长度，无单位时按英寸处理。
func parseInches(raw string) float64 {
	return layout.ParseRawLengthStr(raw).Inches()
}

func parseSwitch(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "on", "true", "yes", "enabled":
		return true, nil
	case "off", "false", "no", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("开关值 %q 无效（可选 on/off）", raw)
}
