package canvasrenderer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/checkpress/document"
	"github.com/ByLCY/checkpress/fonts"
	"github.com/ByLCY/checkpress/layout"
	"github.com/ByLCY/checkpress/renderer"
)

// LineHeight 与 HTML 渲染器的 line-height 一致。
const LineHeight = 1.15

// Renderer draws print documents via github.com/tdewolff/canvas.
type Renderer struct {
	baseDir string
	font    string
	creator string

	// injected resources
	fontBlobs  map[string][]byte // by unique name
	imageBlobs map[string][]byte // by unique name
	// 注入时按 Path 读取失败的资源，使用时报告原始错误
	fontErrs  map[string]error
	imageErrs map[string]error

	fontMu sync.Mutex
	family *canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	// Font 为字段字体：embed:<name> 使用内置 Go 字体，built-in:<name> 使用注入字体，其余按路径解析。
	Font    string
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
	Images  map[string]Resource // built-in images accessible via built-in:<name>
	Creator string
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// TextLine 是换行后的一行文字，宽高单位为 mm。
type TextLine struct {
	Content   string
	Width     float64
	Height    float64
	GapBefore float64
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir: opts.BaseDir,
		font:    opts.Font,
		creator: opts.Creator,
	}
	r.fontBlobs, r.fontErrs = ingest(opts.Fonts)
	r.imageBlobs, r.imageErrs = ingest(opts.Images)
	if r.font == "" {
		r.font = "embed:" + fonts.Default
	}
	if r.creator == "" {
		r.creator = "checkpress"
	}
	return r
}

func ingest(resources map[string]Resource) (map[string][]byte, map[string]error) {
	out := map[string][]byte{}
	errs := map[string]error{}
	for name, res := range resources {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			out[name] = res.Bytes
			continue
		}
		if res.Path == "" {
			continue
		}
		data, err := os.ReadFile(res.Path)
		switch {
		case err != nil:
			errs[name] = err
		case len(data) == 0:
			errs[name] = fmt.Errorf("资源文件 %s 为空", res.Path)
		default:
			out[name] = data
		}
	}
	return out, errs
}

// lookup 返回注入的资源；按 Path 注入但读取失败时返回当时的错误。
func lookup(blobs map[string][]byte, errs map[string]error, name string) ([]byte, bool, error) {
	if blob, ok := blobs[name]; ok {
		return blob, true, nil
	}
	if err, ok := errs[name]; ok {
		return nil, true, err
	}
	return nil, false, nil
}

// decodeDataURI 解析 data:image/<type>;base64,<payload> 形式的图片。
func decodeDataURI(src string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("data URI 缺少逗号分隔的数据段")
	}
	if !strings.HasPrefix(header, "image/") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("仅支持 base64 编码的 data:image/* 图片")
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("解码 data URI 失败: %w", err)
	}
	return data, nil
}

// Page 描述输出纸张（mm）以及文档左上角在纸张上的偏移。
type Page struct {
	WidthMm   float64
	HeightMm  float64
	OffsetXMm float64
	OffsetYMm float64
}

// Render renders the document into a single-page PDF sized to the composed check block.
func (r *Renderer) Render(doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("打印文档为空")
	}
	width, height := doc.PageSizeMm()
	return r.RenderPage(doc, Page{WidthMm: width, HeightMm: height})
}

// RenderPage 将文档绘制到指定纸张上，用于按 placement 偏移打印到整张纸。
func (r *Renderer) RenderPage(doc *document.Document, page Page) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("打印文档为空")
	}
	if page.WidthMm <= 0 || page.HeightMm <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %.2fmm x %.2fmm", page.WidthMm, page.HeightMm)
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, page.WidthMm, page.HeightMm, nil)
	writer.SetInfo(doc.Title, "check", "", "", r.creator)

	c := canvas.New(page.WidthMm, page.HeightMm)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与文档保持左上角为原点

	for _, bg := range doc.Backgrounds {
		if err := r.drawBackground(ctx, bg, page.OffsetXMm, page.OffsetYMm); err != nil {
			return nil, err
		}
	}
	for _, f := range doc.Fields {
		if err := r.drawField(ctx, f, page.OffsetXMm, page.OffsetYMm); err != nil {
			return nil, err
		}
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// LayoutLines 使用贪心换行算法，widthMm 为容器宽度（mm），fontPt 为字号（pt）。
func (r *Renderer) LayoutLines(content string, widthMm, fontPt float64) ([]TextLine, error) {
	face, err := r.fontFace(fontPt)
	if err != nil {
		return nil, err
	}
	lines := greedyWrapTokens(content, widthMm, face)
	lineHeight := ptToMm(fontPt) * LineHeight
	textHeight := face.Metrics().LineHeight
	if textHeight <= 0 {
		textHeight = lineHeight
	}
	leading := math.Max(lineHeight-textHeight, 0)
	if len(lines) == 0 {
		lines = []TextLine{{Height: textHeight}}
	}
	for i := range lines {
		lines[i].Height = textHeight
		if i > 0 {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

// drawField 在字段框内逐行绘制文本，超出框底部的行被裁掉（首行除外），与 HTML 的 overflow:hidden 对应。
func (r *Renderer) drawField(ctx *canvas.Context, f document.Field, ox, oy float64) error {
	x, y := ox+ptToMm(f.XPt), oy+ptToMm(f.YPt)
	w, h := ptToMm(f.WPt), ptToMm(f.HPt)
	lines, err := r.LayoutLines(f.Text, w, f.FontPt)
	if err != nil {
		return err
	}
	face, err := r.fontFace(f.FontPt)
	if err != nil {
		return err
	}
	ascent := face.Metrics().Ascent

	cursorY := y
	for i, line := range lines {
		cursorY += line.GapBefore
		if i > 0 && cursorY+line.Height > y+h+1e-9 {
			break
		}
		// 基线位置：行顶部加上字体上升部
		ctx.DrawText(x, cursorY+ascent, canvas.NewTextLine(face, line.Content, canvas.Left))
		cursorY += line.Height
	}
	return nil
}

func (r *Renderer) drawBackground(ctx *canvas.Context, bg document.Background, ox, oy float64) error {
	src, err := r.loadImage(bg.Src)
	if err != nil {
		return err
	}
	boxX, boxY := ox+ptToMm(bg.XPt), oy+ptToMm(bg.YPt)
	boxW, boxH := ptToMm(bg.WPt), ptToMm(bg.HPt)
	placed, ok := fitImage(src, boxW, boxH, bg.Fit)
	if !ok {
		return nil
	}
	img := withOpacity(placed.img, bg.Opacity)
	ctx.DrawImage(boxX+placed.offX, boxY+placed.offY, img, canvas.DPMM(placed.dpmm))
	return nil
}

func (r *Renderer) loadImage(orig string) (image.Image, error) {
	var data []byte
	switch {
	case strings.HasPrefix(orig, "built-in:") || strings.HasPrefix(orig, "builtin:"):
		name := strings.TrimPrefix(strings.TrimPrefix(orig, "built-in:"), "builtin:")
		blob, ok, err := lookup(r.imageBlobs, r.imageErrs, name)
		if err != nil {
			return nil, fmt.Errorf("读取内置图片资源 built-in:%s 失败: %w", name, err)
		}
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 built-in:%s", name)
		}
		data = blob
	case strings.HasPrefix(orig, "data:"):
		blob, err := decodeDataURI(orig)
		if err != nil {
			return nil, err
		}
		data = blob
	default:
		blob, ok, err := lookup(r.imageBlobs, r.imageErrs, orig)
		if err != nil {
			return nil, fmt.Errorf("读取图片资源 %s 失败: %w", orig, err)
		}
		if ok {
			data = blob
			break
		}
		if r.baseDir == "" && !filepath.IsAbs(orig) {
			return nil, fmt.Errorf("未指定资源目录时不允许直接使用路径：%s（请改用 built-in:）", orig)
		}
		path := orig
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.baseDir, path)
		}
		blob, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取图片 %s 失败: %w", orig, err)
		}
		data = blob
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", orig, err)
	}
	return img, nil
}

func (r *Renderer) fontFace(sizePt float64) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily()
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, canvas.Black, canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.family != nil {
		return r.family, nil
	}

	family := canvas.NewFontFamily("checkpress")
	data, err := r.loadFontBytes(r.font)
	if err == nil {
		err = family.LoadFont(data, 0, canvas.FontRegular)
	}
	if err != nil {
		// 字体不可用时回退到内置 Go 字体
		fallback, fbErr := fonts.Load(fonts.Default)
		if fbErr != nil {
			return nil, err
		}
		family = canvas.NewFontFamily("checkpress-fallback")
		if err := family.LoadFont(fallback, 0, canvas.FontRegular); err != nil {
			return nil, err
		}
	}
	r.family = family
	return family, nil
}

func (r *Renderer) loadFontBytes(src string) ([]byte, error) {
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		blob, ok, err := lookup(r.fontBlobs, r.fontErrs, name)
		if err != nil {
			return nil, fmt.Errorf("读取内置字体资源 built-in:%s 失败: %w", name, err)
		}
		if !ok {
			return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
		}
		return blob, nil
	}
	if strings.HasPrefix(src, "embed:") {
		return fonts.Load(src)
	}
	// Path based
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 built-in: 或 embed:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

// ptToMm 将点(pt)转换为毫米(mm)。
func ptToMm(pt float64) float64 { return layout.InToMm(layout.PtToIn(pt)) }
