package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/ByLCY/checkpress/config"
	"github.com/ByLCY/checkpress/document"
	"github.com/ByLCY/checkpress/dsl"
	"github.com/ByLCY/checkpress/layout"
	"github.com/ByLCY/checkpress/logging"
	"github.com/ByLCY/checkpress/printing"
	"github.com/ByLCY/checkpress/printing/chrome"
	"github.com/ByLCY/checkpress/printing/local"
	canvasrenderer "github.com/ByLCY/checkpress/renderer/canvas"
	htmlrenderer "github.com/ByLCY/checkpress/renderer/html"
)

// cliOptions 汇总命令行参数。
type cliOptions struct {
	LayoutPath string
	ModelPath  string
	SaveModel  string
	DataPath   string
	OutPath    string
	HTMLPath   string
	Sheet      bool
	Batch      bool
	Print      bool
	Preview    bool
	Device     string
}

func main() {
	var opts cliOptions
	configPath := flag.String("config", "", "配置文件路径（toml/yaml/json）")
	flag.StringVar(&opts.LayoutPath, "layout", "", "支票版式 DSL 文件路径")
	flag.StringVar(&opts.ModelPath, "model", "", "支票模型 JSON 文件路径（与 -layout 二选一）")
	flag.StringVar(&opts.SaveModel, "save-model", "", "将最终模型写出为 JSON")
	flag.StringVar(&opts.DataPath, "data", "", "支票数据 JSON：单个对象，或配合 -sheet/-batch 使用数组")
	flag.StringVar(&opts.OutPath, "out", "", "PDF 输出路径")
	flag.StringVar(&opts.HTMLPath, "html", "", "HTML 输出路径")
	flag.BoolVar(&opts.Sheet, "sheet", false, "三联模式：每页三张支票")
	flag.BoolVar(&opts.Batch, "batch", false, "批量打印数据数组中的每一张支票")
	flag.BoolVar(&opts.Print, "print", false, "发送到打印机")
	flag.BoolVar(&opts.Preview, "preview", false, "在浏览器窗口中预览（仅 chrome 后端）")
	flag.StringVar(&opts.Device, "device", "", "打印机名称，覆盖配置中的 print.device")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, cfg, logger); err != nil {
		logger.Error("checkpress failed", zap.Error(err))
		os.Exit(1)
	}
}

// run 串联模型加载、文档生成、渲染与打印。命令行是唯一读写文件的地方。
func run(ctx context.Context, opts cliOptions, cfg *config.Config, logger *zap.Logger) error {
	if opts.OutPath == "" && opts.HTMLPath == "" && !opts.Print && !opts.Preview && opts.SaveModel == "" {
		return fmt.Errorf("至少指定 -out、-html、-print、-preview 或 -save-model 之一")
	}
	sheet := opts.Sheet || cfg.Render.SheetMode

	m, baseDir, err := loadModel(opts)
	if err != nil {
		return err
	}
	if opts.SaveModel != "" {
		if err := writeModel(m, opts.SaveModel); err != nil {
			return err
		}
	}
	items, err := loadData(opts.DataPath)
	if err != nil {
		return err
	}

	images, err := loadTemplateImage(m, baseDir)
	if err != nil {
		return err
	}
	htmlR := htmlrenderer.New(htmlrenderer.Options{Images: images})
	canvasImages := make(map[string]canvasrenderer.Resource, len(images))
	for k, v := range images {
		canvasImages[k] = canvasrenderer.Resource{Bytes: v}
	}
	canvasR := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: baseDir, Images: canvasImages})

	backend, previewer, closer := newBackend(cfg, canvasR, logger)
	defer closer()

	orch := printing.NewOrchestrator(printing.Options{
		Backend:        backend,
		Previewer:      previewer,
		HTML:           htmlR,
		Resolver:       cfg.Resolver(),
		Order:          cfg.Render.LayoutOrder,
		Title:          cfg.Print.Title,
		BatchDelay:     cfg.Print.BatchDelay,
		DoneClearDelay: cfg.Print.DoneClearDelay,
		Logger:         logger,
	})

	data := slotData(items, sheet)
	if opts.HTMLPath != "" {
		doc, err := document.Generate(m, data, document.Options{
			Order:     cfg.Render.LayoutOrder,
			SheetMode: sheet,
			Resolver:  cfg.Resolver(),
			Title:     cfg.Print.Title,
		})
		if err != nil {
			return err
		}
		html, err := htmlR.Render(doc)
		if err != nil {
			return err
		}
		if err := writeFile(opts.HTMLPath, html); err != nil {
			return err
		}
		logger.Info("HTML written", zap.String("path", opts.HTMLPath))
	}

	if opts.OutPath != "" {
		res := orch.SavePDF(ctx, printing.PDFJob{Model: m, Data: data, SheetMode: sheet})
		if !res.Success {
			return fmt.Errorf("生成 PDF 失败: %w", res.Error)
		}
		if err := writeFile(opts.OutPath, res.Data); err != nil {
			return err
		}
		logger.Info("PDF written", zap.String("path", opts.OutPath), zap.Int("bytes", len(res.Data)))
	}

	device := cfg.Print.Device
	if opts.Device != "" {
		device = opts.Device
	}
	if opts.Print {
		if err := printChecks(ctx, orch, opts, cfg, m, items, sheet, device, logger); err != nil {
			return err
		}
	}

	if opts.Preview {
		res := orch.Preview(ctx, printing.PrintJob{Model: m, Data: data, SheetMode: sheet})
		if !res.Success {
			return res.Error
		}
		logger.Info("preview open, press Ctrl+C to exit")
		<-ctx.Done()
	}
	return nil
}

func printChecks(ctx context.Context, orch *printing.Orchestrator, opts cliOptions, cfg *config.Config,
	m *layout.Model, items []layout.CheckData, sheet bool, device string, logger *zap.Logger) error {
	if !opts.Batch {
		res := orch.Print(ctx, printing.PrintJob{
			Model:      m,
			Data:       slotData(items, sheet),
			SheetMode:  sheet,
			Silent:     cfg.Print.Silent,
			DeviceName: device,
		})
		if !res.Success {
			return fmt.Errorf("打印失败: %w", res.Error)
		}
		logger.Info("printed", zap.String("job_id", res.JobID))
		return nil
	}

	res := orch.PrintBatch(ctx, printing.BatchJob{
		Model:           m,
		Items:           items,
		Sheet:           sheet,
		ContinueOnError: cfg.Print.ContinueOnError,
		DeviceName:      device,
		Progress: func(p printing.Progress) {
			logger.Info("printing", zap.Int("current", p.Current), zap.Int("total", p.Total))
		},
	})
	logger.Info("batch finished",
		zap.String("job_id", res.JobID),
		zap.Int("total", res.Summary.Total),
		zap.Int("succeeded", res.Summary.Succeeded),
		zap.Int("failed", res.Summary.Failed),
		zap.Bool("cancelled", res.Cancelled))
	if !res.Success {
		return fmt.Errorf("批量打印失败: %d/%d 页失败: %w", res.Summary.Failed, res.Summary.Total, res.Error)
	}
	if res.Error != nil {
		return fmt.Errorf("批量打印中断: %w", res.Error)
	}
	return nil
}

func newBackend(cfg *config.Config, canvasR *canvasrenderer.Renderer, logger *zap.Logger) (printing.Backend, printing.Previewer, func()) {
	spooler := printing.LPSpooler{Command: cfg.Print.SpoolCommand, Logger: logger}
	if cfg.Print.Backend == config.BackendLocal {
		return local.New(local.Config{Renderer: canvasR, Spooler: spooler, Logger: logger}), nil, func() {}
	}
	b := chrome.New(&chrome.Config{
		RemoteURL: cfg.Chrome.RemoteURL,
		NoSandbox: cfg.Chrome.NoSandbox,
		Timeout:   cfg.Chrome.Timeout,
		Spooler:   spooler,
		Logger:    logger,
	})
	return b, b, func() { _ = b.Close() }
}

// loadModel 返回模型以及解析相对路径（模板图片、字体）所用的目录。
func loadModel(opts cliOptions) (*layout.Model, string, error) {
	switch {
	case opts.LayoutPath != "" && opts.ModelPath != "":
		return nil, "", fmt.Errorf("-layout 与 -model 不能同时使用")
	case opts.LayoutPath != "":
		file, err := os.Open(opts.LayoutPath)
		if err != nil {
			return nil, "", fmt.Errorf("无法打开版式文件 %s: %w", opts.LayoutPath, err)
		}
		defer file.Close()
		doc, err := dsl.Parse(file)
		if err != nil {
			return nil, "", fmt.Errorf("解析版式失败: %w", err)
		}
		m, err := dsl.Build(doc, nil)
		if err != nil {
			return nil, "", err
		}
		return m, filepath.Dir(opts.LayoutPath), nil
	case opts.ModelPath != "":
		file, err := os.Open(opts.ModelPath)
		if err != nil {
			return nil, "", fmt.Errorf("无法打开模型文件 %s: %w", opts.ModelPath, err)
		}
		defer file.Close()
		m, err := layout.DecodeModel(file)
		if err != nil {
			return nil, "", err
		}
		return m, filepath.Dir(opts.ModelPath), nil
	default:
		return layout.DefaultModel(), ".", nil
	}
}

// loadData 接受单个对象或对象数组；未指定文件时返回一张空白支票。
func loadData(path string) ([]layout.CheckData, error) {
	if path == "" {
		return []layout.CheckData{{}}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件失败: %w", err)
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var items []layout.CheckData
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("解析数据 JSON 失败: %w", err)
		}
		return items, nil
	}
	var item layout.CheckData
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("解析数据 JSON 失败: %w", err)
	}
	return []layout.CheckData{item}, nil
}

// slotData 堆叠模式取第一张；sheet 模式依次填入前三个槽位。
func slotData(items []layout.CheckData, sheet bool) layout.SlotData {
	at := func(i int) *layout.CheckData {
		if i < len(items) {
			return &items[i]
		}
		return nil
	}
	if sheet {
		return layout.SheetChecks(at(0), at(1), at(2))
	}
	return layout.SingleCheck(at(0))
}

// loadTemplateImage 读取背景图片，以模板 src 为键注入两个渲染器。
func loadTemplateImage(m *layout.Model, baseDir string) (map[string][]byte, error) {
	if m.Template == nil || m.Template.Src == "" {
		return nil, nil
	}
	src := m.Template.Src
	for _, prefix := range []string{"data:", "http://", "https://", "built-in:", "builtin:"} {
		if strings.HasPrefix(src, prefix) {
			return nil, nil
		}
	}
	path := strings.TrimPrefix(src, "file://")
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("模板图片不存在: %s", path)
		}
		return nil, fmt.Errorf("读取模板图片失败: %w", err)
	}
	return map[string][]byte{src: raw}, nil
}

func writeModel(m *layout.Model, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建模型文件失败: %w", err)
	}
	defer file.Close()
	return layout.EncodeModel(file, m)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败 %s: %w", path, err)
	}
	return nil
}
