// Package config loads checkpress settings from an optional file and CHECKPRESS_ environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ByLCY/checkpress/binding"
)

// Config holds all application configuration
type Config struct {
	Render   RenderConfig
	Date     DateConfig
	Memo     MemoConfig
	Currency CurrencyConfig
	Print    PrintConfig
	Chrome   ChromeConfig
	Log      LogConfig
}

// RenderConfig holds surface and document composition settings
type RenderConfig struct {
	Zoom        float64
	SheetMode   bool
	LayoutOrder []string
}

// DateConfig holds the date rendering format
type DateConfig struct {
	Order     []string // slot tokens: MM, M, DD, D, YYYY, YY
	Separator string
	Long      bool
}

// MemoConfig selects the memo fallback per stub: external or internal
type MemoConfig struct {
	Stub1 string
	Stub2 string
}

// CurrencyConfig holds money formatting settings
type CurrencyConfig struct {
	Symbol string
}

// PrintConfig holds print orchestration settings
type PrintConfig struct {
	Backend         string // chrome, local
	Device          string
	Silent          bool
	Title           string
	BatchDelay      time.Duration
	DoneClearDelay  time.Duration
	ContinueOnError bool
	SpoolCommand    string
}

// ChromeConfig holds the chromedp backend settings
type ChromeConfig struct {
	RemoteURL string
	NoSandbox bool
	Timeout   time.Duration // 0 = no limit
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// 打印后端名称
const (
	BackendChrome = "chrome"
	BackendLocal  = "local"
)

// Load loads configuration from an optional file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with CHECKPRESS_ prefix (e.g., CHECKPRESS_PRINT_DEVICE)
// 2. the file at path (TOML, YAML or JSON by extension); empty path skips it
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("CHECKPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Render: RenderConfig{
			Zoom:        v.GetFloat64("render.zoom"),
			SheetMode:   v.GetBool("render.sheet_mode"),
			LayoutOrder: v.GetStringSlice("render.layout_order"),
		},
		Date: DateConfig{
			Order:     v.GetStringSlice("date.order"),
			Separator: v.GetString("date.separator"),
			Long:      v.GetBool("date.long"),
		},
		Memo: MemoConfig{
			Stub1: v.GetString("memo.stub1"),
			Stub2: v.GetString("memo.stub2"),
		},
		Currency: CurrencyConfig{
			Symbol: v.GetString("currency.symbol"),
		},
		Print: PrintConfig{
			Backend:         strings.ToLower(v.GetString("print.backend")),
			Device:          v.GetString("print.device"),
			Silent:          v.GetBool("print.silent"),
			Title:           v.GetString("print.title"),
			BatchDelay:      v.GetDuration("print.batch_delay"),
			DoneClearDelay:  v.GetDuration("print.done_clear_delay"),
			ContinueOnError: v.GetBool("print.continue_on_error"),
			SpoolCommand:    v.GetString("print.spool_command"),
		},
		Chrome: ChromeConfig{
			RemoteURL: v.GetString("chrome.remote_url"),
			NoSandbox: v.GetBool("chrome.no_sandbox"),
			Timeout:   v.GetDuration("chrome.timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("render.zoom", 1.0)
	v.SetDefault("render.sheet_mode", false)
	v.SetDefault("render.layout_order", []string{"check", "stub1", "stub2"})

	v.SetDefault("date.order", []string{"MM", "DD", "YYYY"})
	v.SetDefault("date.separator", "/")
	v.SetDefault("date.long", false)

	v.SetDefault("memo.stub1", string(binding.MemoExternal))
	v.SetDefault("memo.stub2", string(binding.MemoInternal))
	v.SetDefault("currency.symbol", "$")

	v.SetDefault("print.backend", BackendChrome)
	v.SetDefault("print.device", "")
	v.SetDefault("print.silent", true)
	v.SetDefault("print.title", "Check ${checkNumber}")
	v.SetDefault("print.batch_delay", 500*time.Millisecond)
	v.SetDefault("print.done_clear_delay", 3*time.Second)
	v.SetDefault("print.continue_on_error", false)
	v.SetDefault("print.spool_command", "lp")

	v.SetDefault("chrome.remote_url", "")
	v.SetDefault("chrome.no_sandbox", false)
	v.SetDefault("chrome.timeout", time.Duration(0))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
}

// Validate checks values that cannot be repaired silently.
func (c *Config) Validate() error {
	switch c.Print.Backend {
	case BackendChrome, BackendLocal:
	default:
		return fmt.Errorf("print.backend must be %q or %q, got %q", BackendChrome, BackendLocal, c.Print.Backend)
	}
	for _, key := range []string{c.Memo.Stub1, c.Memo.Stub2} {
		switch binding.MemoSource(key) {
		case binding.MemoExternal, binding.MemoInternal:
		default:
			return fmt.Errorf("memo source must be external or internal, got %q", key)
		}
	}
	if c.Chrome.Timeout < 0 {
		return fmt.Errorf("chrome.timeout must not be negative")
	}
	return nil
}

// Resolver builds the binding resolver described by the date, memo and currency sections.
func (c *Config) Resolver() binding.Resolver {
	return binding.Resolver{
		DateFormat: binding.DateFormat{
			Order:     c.Date.Order,
			Separator: c.Date.Separator,
			Long:      c.Date.Long,
		},
		Memo: binding.MemoSources{
			Stub1: binding.MemoSource(c.Memo.Stub1),
			Stub2: binding.MemoSource(c.Memo.Stub2),
		},
		Currency: c.Currency.Symbol,
	}
}
