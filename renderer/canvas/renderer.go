package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/colgrip/layout"
	"github.com/ByLCY/colgrip/renderer"
)

const (
	tableBorderWidth  = 0.2 // mm
	handleStrokeWidth = 0.6 // mm
	activeOutline     = 0.5 // mm
)

var (
	handleColor = layout.Color{R: 47, G: 128, B: 237}
	textColor   = layout.Color{R: 30, G: 30, B: 30}
)

// Renderer draws layout results via github.com/tdewolff/canvas.
// Without a font, text is skipped and only table geometry and handles are drawn.
type Renderer struct {
	opts Options

	fontMu     sync.Mutex
	fontLoaded bool
	family     *canvas.FontFamily
	fontErr    error
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	FontPath string // TTF/OTF file used for cell and paragraph text
	FontData []byte // takes precedence over FontPath
}

// NewRenderer creates a canvas-based renderer.
func NewRenderer(opts Options) *Renderer { return &Renderer{opts: opts} }

// HasFont reports whether text will be drawn.
func (r *Renderer) HasFont() bool {
	family, err := r.ensureFontFamily()
	return err == nil && family != nil
}

// Render renders the result into a single-page PDF.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.Width <= 0 || result.Height <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %gx%g", result.Width, result.Height)
	}
	if _, err := r.ensureFontFamily(); err != nil {
		return nil, err
	}

	width, height := toMm(result.Width), toMm(result.Height)
	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	writer.SetInfo(result.Meta.Title, result.Meta.Version, "", "", result.Meta.Creator)

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	for _, tb := range result.Paragraphs {
		r.drawTextBox(ctx, tb)
	}
	for _, table := range result.Tables {
		r.drawTable(ctx, table)
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// LayoutLines 实现 layout.Typesetter 接口，使用贪心换行算法。
// 入参与返回值均为 px；与字体系统交互时换算为 mm/pt。没有字体时按显式换行拆分并估算宽度。
func (r *Renderer) LayoutLines(content string, width, fontSize, lineHeight float64) ([]layout.TextLine, error) {
	face, err := r.fontFace(fontSize, textColor)
	if err != nil {
		return nil, err
	}
	if face == nil {
		var lines []layout.TextLine
		for _, part := range strings.Split(content, "\n") {
			lines = append(lines, layout.TextLine{
				Content: part,
				Width:   math.Min(fontSize*0.55*float64(len([]rune(part))), width),
				Height:  fontSize,
			})
		}
		return withLeading(lines, fontSize, lineHeight), nil
	}

	lines := greedyWrapTokens(content, toMm(width), face)
	textHeight := toPx(face.Metrics().LineHeight)
	if textHeight <= 0 {
		textHeight = lineHeight
	}
	for i := range lines {
		lines[i].Width = toPx(lines[i].Width)
		lines[i].Height = textHeight
	}
	if len(lines) == 0 {
		lines = []layout.TextLine{{Height: textHeight}}
	}
	return withLeading(lines, textHeight, lineHeight), nil
}

func withLeading(lines []layout.TextLine, textHeight, lineHeight float64) []layout.TextLine {
	leading := math.Max(lineHeight-textHeight, 0)
	for i := range lines {
		if i == 0 {
			lines[i].GapBefore = 0
		} else {
			lines[i].GapBefore = leading
		}
	}
	return lines
}

func (r *Renderer) drawTable(ctx *canvas.Context, table layout.TableBox) {
	for _, row := range table.Rows {
		for _, cell := range row.Cells {
			if cell.Fill != nil {
				ctx.SetFillColor(colorFromLayout(*cell.Fill))
			} else {
				ctx.SetFillColor(canvas.White)
			}
			ctx.SetStrokeColor(colorFromLayout(table.BorderColor))
			ctx.SetStrokeWidth(tableBorderWidth)
			ctx.DrawPath(toMm(cell.X), toMm(row.Y), canvas.Rectangle(toMm(cell.Width), toMm(row.Height)))

			textBox := cell.Text
			textBox.X += toPx(tableBorderWidth)
			textBox.Y += toPx(tableBorderWidth)
			r.drawTextBox(ctx, textBox)
		}
	}
	if !table.Active {
		return
	}
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(colorFromLayout(handleColor))
	ctx.SetStrokeWidth(activeOutline)
	ctx.DrawPath(toMm(table.X), toMm(table.Y), canvas.Rectangle(toMm(table.Width), toMm(table.Height)))
	r.drawHandles(ctx, table.Handles)
}

// drawHandles 在每条内部列边界上画一条竖线。
func (r *Renderer) drawHandles(ctx *canvas.Context, handles []layout.HandleZone) {
	ctx.SetStrokeColor(colorFromLayout(handleColor))
	ctx.SetStrokeWidth(handleStrokeWidth)
	for _, h := range handles {
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(0, toMm(h.Height))
		ctx.DrawPath(toMm(h.Boundary()), toMm(h.Y), p)
	}
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) {
	face, err := r.fontFace(tb.FontSize, textColor)
	if err != nil || face == nil {
		return
	}
	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: tb.Content, Width: tb.Width, Height: tb.LineHeight}}
	}
	cursorY := toMm(tb.Y)
	metrics := face.Metrics()
	for _, line := range lines {
		cursorY += toMm(line.GapBefore)
		if line.Content != "" {
			// 基线位置：行顶部加上字体上升部
			ctx.DrawText(toMm(tb.X), cursorY+metrics.Ascent, canvas.NewTextLine(face, line.Content, canvas.Left))
		}
		height := line.Height
		if height <= 0 {
			height = tb.FontSize
		}
		cursorY += toMm(height)
	}
}

// fontFace 返回给定 px 字号的字体面；未配置字体时返回 nil。
func (r *Renderer) fontFace(sizePx float64, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily()
	if err != nil || family == nil {
		return nil, err
	}
	return family.Face(toPt(sizePx), colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.fontLoaded {
		return r.family, r.fontErr
	}
	r.fontLoaded = true

	data := r.opts.FontData
	if len(data) == 0 && r.opts.FontPath != "" {
		b, err := os.ReadFile(r.opts.FontPath)
		if err != nil {
			r.fontErr = fmt.Errorf("读取字体 %s 失败: %w", r.opts.FontPath, err)
			return nil, r.fontErr
		}
		data = b
	}
	if len(data) == 0 {
		return nil, nil
	}
	family := canvas.NewFontFamily("colgrip")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		r.fontErr = fmt.Errorf("加载字体失败: %w", err)
		return nil, r.fontErr
	}
	r.family = family
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toMm 将像素(px)转换为毫米(mm)。
func toMm(px float64) float64 { return px * layout.PxToMm }

// toPx 将毫米(mm)转换为像素(px)。
func toPx(mm float64) float64 { return mm * layout.MmToPx }

// toPt 将像素(px)转换为点(pt)，用于创建字体面。
func toPt(px float64) float64 { return toMm(px) * layout.MmToPt }

// greedyWrapTokens 优先在空白处分割，超过限制时在词内拆分。宽度单位为 mm。
func greedyWrapTokens(content string, width float64, face *canvas.FontFace) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	tokens := tokenizeContent(content)
	var lines []layout.TextLine
	var builder strings.Builder
	currentWidth := 0.0

	emit := func(force bool) {
		if builder.Len() == 0 {
			if force {
				lines = append(lines, layout.TextLine{Content: "", Width: 0})
			}
			return
		}
		lines = append(lines, layout.TextLine{Content: builder.String(), Width: currentWidth})
		builder.Reset()
		currentWidth = 0
	}
	appendToken := func(token string) {
		builder.WriteString(token)
		currentWidth += face.TextWidth(token)
	}

	for _, token := range tokens {
		if token == "\n" {
			emit(true)
			continue
		}
		tokenWidth := face.TextWidth(token)
		if currentWidth > 0 && currentWidth+tokenWidth > limit {
			emit(false)
		}
		if tokenWidth <= limit {
			appendToken(token)
			continue
		}
		for _, chunk := range splitTokenByWidth(token, limit, face.TextWidth) {
			if currentWidth > 0 && currentWidth+face.TextWidth(chunk) > limit {
				emit(false)
			}
			appendToken(chunk)
		}
	}
	emit(true)
	return lines
}

// tokenizeContent 把文本拆成空白段、非空白段与单独的换行符。
func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, measure func(string) float64) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var current []rune
	for _, r := range token {
		current = append(current, r)
		if len(current) > 1 && measure(string(current)) > limit {
			parts = append(parts, string(current[:len(current)-1]))
			current = []rune{r}
		}
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}
