package renderer

import "github.com/ByLCY/checkpress/document"

// Renderer 将打印文档输出为最终文件，例如 HTML 或 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(doc *document.Document) ([]byte, error)
}
