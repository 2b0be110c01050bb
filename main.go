package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/ByLCY/colgrip/editor"
	"github.com/ByLCY/colgrip/layout"
	"github.com/ByLCY/colgrip/markup"
	"github.com/ByLCY/colgrip/model"
	"github.com/ByLCY/colgrip/renderer"
	canvasrenderer "github.com/ByLCY/colgrip/renderer/canvas"
	"github.com/ByLCY/colgrip/resize"
	"github.com/ByLCY/colgrip/terminal"
)

type runOptions struct {
	input     string
	output    string
	emit      string
	debug     string
	selection int
	drag      string
	tui       bool
	data      any
	cfg       config
}

func main() {
	input := flag.String("in", "examples/inventory.grip", "标记文件路径")
	output := flag.String("out", "", "PDF 预览输出路径")
	emit := flag.String("emit", "", "调整后的标记文件输出路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到标记文本的 JSON 数据")
	selection := flag.Int("select", -1, "光标位置，默认放在第一个表格内")
	drag := flag.String("drag", "", `脚本化拖拽 "col:dx[,dx...]"`)
	cfgPath := flag.String("config", "", "JSON 配置文件")
	font := flag.String("font", "", "PDF 预览使用的 TTF/OTF 字体")
	minWidth := flag.Int("min-width", 0, "列的最小宽度（px）")
	tui := flag.Bool("tui", false, "在终端中交互调整列宽")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	resize.SetVerboseLogging(*verbose)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if *font != "" {
		cfg.Font = *font
	}
	if *minWidth > 0 {
		cfg.Resize.MinWidth = *minWidth
	}

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	opts := runOptions{
		input:     *input,
		output:    *output,
		emit:      *emit,
		debug:     *debug,
		selection: *selection,
		drag:      *drag,
		tui:       *tui,
		data:      inputData,
		cfg:       cfg,
	}
	if err := run(opts); err != nil {
		log.Fatalf("处理失败: %v", err)
	}
}

// run 串联加载、拖拽回放、交互与输出。
func run(opts runOptions) error {
	file, err := os.Open(opts.input)
	if err != nil {
		return fmt.Errorf("无法打开标记文件 %s: %w", opts.input, err)
	}
	doc, err := markup.Load(file, markup.LoadOptions{Data: opts.data})
	file.Close()
	if err != nil {
		return err
	}

	ed := editor.New(doc.Root, editor.Options{Resize: opts.cfg.Resize, HistoryLimit: opts.cfg.HistoryLimit})
	defer ed.Close()
	if opts.selection >= 0 {
		ed.SetSelection(opts.selection)
	} else if pos, ok := firstTable(doc.Root); ok {
		ed.SetSelection(pos + 1)
	}

	if opts.drag != "" {
		script, err := parseDrag(opts.drag)
		if err != nil {
			return err
		}
		if err := replayDrag(ed, script); err != nil {
			return err
		}
		fmt.Printf("拖拽完成，列宽：%v\n", ed.ColumnWidths())
	}

	layoutOpts := opts.cfg.Layout
	layoutOpts.FallbackWidth = opts.cfg.Resize.FallbackWidth

	if opts.tui {
		if err := runTerminal(ed, layoutOpts); err != nil {
			return err
		}
	}

	doc.Root = ed.Doc()
	if opts.emit != "" {
		if err := writeMarkup(doc, opts.emit); err != nil {
			return err
		}
		fmt.Printf("已写出标记文件：%s\n", opts.emit)
	}
	if opts.output == "" && opts.debug == "" {
		return nil
	}

	r := canvasrenderer.NewRenderer(canvasrenderer.Options{FontPath: opts.cfg.Font})
	if r.HasFont() {
		layoutOpts.Typesetter = r
	}
	result, err := layout.Build(ed.Doc(), ed.Selection(), layoutOpts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	result.Meta = layout.DocumentMeta{Title: doc.Name, Version: doc.Version, Creator: "colgrip"}

	if opts.debug != "" {
		if err := writeDebug(result, opts.debug); err != nil {
			return err
		}
	}
	if opts.output != "" {
		if err := writePDF(r, result, opts.output); err != nil {
			return err
		}
		fmt.Printf("已生成 PDF：%s\n", opts.output)
	}
	return nil
}

func firstTable(doc *model.Node) (int, bool) {
	found := -1
	doc.ForEachChild(-1, func(child *model.Node, pos, _ int) bool {
		if child.Type == model.TypeTable {
			found = pos
			return false
		}
		return true
	})
	return found, found >= 0
}

// replayDrag 以真实的指针事件序列驱动编辑器：按下、逐个移动、抬起。
func replayDrag(ed *editor.Editor, script dragScript) error {
	down := resize.PointerEvent{
		Type:   resize.PointerDown,
		Handle: &resize.HandleTarget{ColumnIndex: script.Column},
	}
	if !ed.HandlePointer(down) {
		return fmt.Errorf("无法在第 %d 列开始拖拽：光标不在表格内或列不存在", script.Column)
	}
	last := 0
	for _, dx := range script.Deltas {
		ed.HandlePointer(resize.PointerEvent{Type: resize.PointerMove, ClientX: dx})
		last = dx
	}
	ed.HandlePointer(resize.PointerEvent{Type: resize.PointerUp, ClientX: last})
	if ed.Listeners() != 0 {
		return errors.New("拖拽结束后仍有未释放的监听")
	}
	return nil
}

func runTerminal(ed *editor.Editor, opts layout.Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("-tui 需要在终端中运行")
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("创建终端屏幕失败: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("初始化终端失败: %w", err)
	}
	defer screen.Fini()
	return terminal.New(screen, ed, opts).Run()
}

func writeMarkup(doc *markup.Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建标记文件失败: %w", err)
	}
	if err := markup.Write(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("写入标记文件失败: %w", err)
	}
	return f.Close()
}

func writePDF(r renderer.Renderer, result *layout.Result, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(path, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建调试文件失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, f); err != nil {
		f.Close()
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return f.Close()
}
