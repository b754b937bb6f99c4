package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/Elitezen/text-on-gif/binding"
	"github.com/Elitezen/text-on-gif/caption"
	"github.com/Elitezen/text-on-gif/frames"
	"github.com/Elitezen/text-on-gif/layout"
)

// fontFlags 收集可重复的 -font path=family 参数。
type fontFlags []fontArg

type fontArg struct {
	path, family string
}

func (f *fontFlags) String() string {
	parts := make([]string, len(*f))
	for i, a := range *f {
		parts[i] = a.path + "=" + a.family
	}
	return strings.Join(parts, ",")
}

func (f *fontFlags) Set(v string) error {
	path, family, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(path) == "" || strings.TrimSpace(family) == "" {
		return fmt.Errorf("字体参数应为 path=family: %q", v)
	}
	*f = append(*f, fontArg{path: strings.TrimSpace(path), family: strings.TrimSpace(family)})
	return nil
}

type options struct {
	input, output string
	text          string
	style         string
	configPath    string
	fonts         fontFlags
	dataJSON      string
	debugPath     string
	quiet         bool
}

func main() {
	initDisplay()
	initTracing()

	var o options
	flag.StringVar(&o.input, "in", "", "输入 GIF 路径或 URL")
	flag.StringVar(&o.output, "out", "output/caption.gif", "GIF 输出路径")
	flag.StringVar(&o.text, "text", "", "叠加的文字，支持 ${path|默认值} 占位符")
	flag.StringVar(&o.style, "style", "", "样式声明，如 \"font-size: 24px; align-y: top\"")
	flag.StringVar(&o.configPath, "config", "", "YAML 样式文件")
	flag.Var(&o.fonts, "font", "注册字体 path=family，可重复")
	flag.StringVar(&o.dataJSON, "data", "", "绑定到文字的 JSON 数据")
	flag.StringVar(&o.debugPath, "debug", "", "布局调试 JSON 输出路径")
	flag.BoolVar(&o.quiet, "quiet", false, "只输出错误")
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	flag.Parse()
	setTraceLevel(*tlevel)

	if o.input == "" {
		log.Fatalf("缺少 -in 参数")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := run(ctx, o)
	if err != nil {
		log.Fatalf("生成 GIF 失败: %v", err)
	}
	if !o.quiet {
		printSummary(ctx, c, o.output)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " GIF ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

var tracedPackages = []string{"caption", "compositor", "encoder", "frames", "canvas"}

func initTracing() {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range tracedPackages {
		conf["trace.textongif."+key] = "Error"
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
}

func setTraceLevel(name string) {
	level := tracing.LevelError
	switch name {
	case "Debug":
		level = tracing.LevelDebug
	case "Info":
		level = tracing.LevelInfo
	case "Error":
	default:
		log.Fatalf("Invalid trace level: %s", name)
	}
	for _, key := range tracedPackages {
		tracing.Select("textongif." + key).SetTraceLevel(level)
	}
}

// run 串联样式解析、字体注册、渲染与输出。
func run(ctx context.Context, o options) (*caption.Caption, error) {
	data, err := binding.Decode(o.dataJSON)
	if err != nil {
		return nil, err
	}
	var opts []layout.Option
	if o.configPath != "" {
		fileOpts, err := loadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts...)
	}
	if o.style != "" {
		styleOpts, err := layout.ParseStyle(o.style)
		if err != nil {
			return nil, err
		}
		opts = append(opts, styleOpts...)
	}

	c := caption.New(frames.ParseSource(o.input))
	for _, f := range o.fonts {
		if err := c.RegisterFont(f.path, f.family); err != nil {
			return nil, fmt.Errorf("注册字体失败: %w", err)
		}
	}
	if !o.quiet {
		c.Subscribe(func(e caption.Event) {
			switch e.Kind {
			case caption.EventDimensions:
				pterm.Info.Printf("%dx%d, %d frames\n", e.Dimensions.Width, e.Dimensions.Height, e.Dimensions.Frames)
			case caption.EventProgress:
				if e.Percent%25 == 0 || e.Percent == 100 {
					pterm.Info.Printf("%3d%%\n", e.Percent)
				}
			}
		})
	}

	c.Configure(binding.Interpolate(o.text, data), opts...)
	if err := c.WriteFile(ctx, o.output); err != nil {
		return nil, err
	}
	if o.debugPath != "" {
		if err := writeDebug(c, o.debugPath); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// loadConfig 读取 YAML 样式文件；键与样式声明相同，按键名排序应用。
func loadConfig(path string) ([]layout.Option, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", path, err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	opts := make([]layout.Option, 0, len(keys))
	for _, k := range keys {
		opt, err := layout.Set(k, fmt.Sprint(values[k]))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

func writeDebug(c *caption.Caption, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(c.Layout(), c.Config(), debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func printSummary(ctx context.Context, c *caption.Caption, output string) {
	dims, _ := c.Dimensions(ctx)
	rows := 0
	if res := c.Layout(); res != nil {
		rows = len(res.Rows)
	}
	cfg := c.Config()
	data := [][]string{
		{"Output", "Size", "Frames", "Rows", "Repeat"},
		{output, fmt.Sprintf("%dx%d", dims.Width, dims.Height), fmt.Sprint(dims.Frames), fmt.Sprint(rows), fmt.Sprint(cfg.Repeat)},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Success.Printf("已生成 GIF：%s\n", output)
}
