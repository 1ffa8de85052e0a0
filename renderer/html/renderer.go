package htmlrenderer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/ByLCY/checkpress/document"
	"github.com/ByLCY/checkpress/layout"
	"github.com/ByLCY/checkpress/renderer"
)

// DefaultFontFamily 与 PDF 渲染器使用的 Go 字体保持一致，缺失时退回无衬线字体。
const DefaultFontFamily = `"Go", "Helvetica Neue", Helvetica, Arial, sans-serif`

// LineHeight 是文字行高与字号之比，canvas 渲染器使用相同的值。
const LineHeight = 1.15

// Options configures the HTML renderer.
type Options struct {
	FontFamily string
	// Images 以模板 src（或 built-in:<name> 中的 name）为键提供图片字节，输出时内联为 data URI。
	Images map[string][]byte
}

// Renderer emits a self-contained HTML page whose boxes are absolutely positioned in points.
type Renderer struct {
	opts Options
	tpl  *template.Template
}

var _ renderer.Renderer = (*Renderer)(nil)

// New creates an HTML renderer.
func New(opts Options) *Renderer {
	if opts.FontFamily == "" {
		opts.FontFamily = DefaultFontFamily
	}
	r := &Renderer{opts: opts}
	r.tpl = template.Must(template.New("check").Funcs(template.FuncMap{
		"pt":       formatPt,
		"boxStyle": boxStyle,
		"bgStyle":  bgStyle,
		"imageURL": r.imageURL,
	}).Parse(pageTemplate))
	return r
}

// Render 输出 HTML 字节。页面尺寸通过 @page 指定，边距为 0。
func (r *Renderer) Render(doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("打印文档为空")
	}
	var buf bytes.Buffer
	err := r.tpl.Execute(&buf, struct {
		*document.Document
		FontFamily template.CSS
		LineHeight float64
	}{doc, template.CSS(cssFontFamily(r.opts.FontFamily)), LineHeight})
	if err != nil {
		return nil, fmt.Errorf("生成 HTML 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// formatPt 以最短的十进制形式输出数值，保证解析回来后与原值一致。
func formatPt(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func boxStyle(f document.Field) template.CSS {
	return template.CSS(fmt.Sprintf("left:%spt;top:%spt;width:%spt;height:%spt;font-size:%spt",
		formatPt(f.XPt), formatPt(f.YPt), formatPt(f.WPt), formatPt(f.HPt), formatPt(f.FontPt)))
}

func bgStyle(b document.Background) template.CSS {
	return template.CSS(fmt.Sprintf("left:%spt;top:%spt;width:%spt;height:%spt;opacity:%s;object-fit:%s",
		formatPt(b.XPt), formatPt(b.YPt), formatPt(b.WPt), formatPt(b.HPt), formatPt(b.Opacity), objectFit(b.Fit)))
}

func objectFit(fit string) string {
	switch fit {
	case layout.FitContain:
		return "contain"
	case layout.FitCover:
		return "cover"
	default:
		return "fill"
	}
}

// imageURL 对注入的图片生成 data URI；其余 src 交给 html/template 做 URL 过滤。
func (r *Renderer) imageURL(src string) any {
	name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
	if data, ok := r.opts.Images[name]; ok && len(data) > 0 {
		return template.URL("data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data))
	}
	if strings.HasPrefix(src, "data:image/") {
		return template.URL(src)
	}
	return src
}

// cssFontFamily 去掉可能截断声明的字符。
func cssFontFamily(s string) string {
	return strings.NewReplacer(";", "", "{", "", "}", "", "<", "", ">", "").Replace(s)
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: {{pt .WidthPt}}pt {{pt .HeightPt}}pt; margin: 0; }
html, body { margin: 0; padding: 0; }
.page { position: relative; overflow: hidden; width: {{pt .WidthPt}}pt; height: {{pt .HeightPt}}pt; font-family: {{.FontFamily}}; color: #000; }
.bg { position: absolute; display: block; }
.field { position: absolute; box-sizing: border-box; overflow: hidden; white-space: pre-wrap; overflow-wrap: anywhere; line-height: {{.LineHeight}}; }
</style>
</head>
<body>
<div class="page">
{{- range .Backgrounds}}
<img class="bg" alt="" src="{{imageURL .Src}}" style="{{bgStyle .}}">
{{- end}}
{{- range .Fields}}
<div class="field" data-key="{{.Key}}"{{if .Slot}} data-slot="{{.Slot}}"{{end}} style="{{boxStyle .}}">{{.Text}}</div>
{{- end}}
</div>
</body>
</html>
`
