package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/browserctl/internal/platform"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseFile parses the Lua config at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := p.ParseString(ctx, string(content))
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Path    string // config file, when parsed from disk
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global browser table. A file without one yields
// an empty config.
func extractConfig(L *lua.LState) (*Config, error) {
	cfg := &Config{}

	global := L.GetGlobal(luaGlobalBrowser)
	switch global.Type() {
	case lua.LTNil:
		return cfg, nil
	case lua.LTTable:
	default:
		return nil, &ParseError{
			Message: fmt.Sprintf("invalid '%s' table", luaGlobalBrowser),
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}
	table := global.(*lua.LTable)

	var err error
	if cfg.Channel, err = stringField(table, luaFieldChannel); err != nil {
		return nil, err
	}
	if cfg.CacheDir, err = pathField(table, luaFieldCacheDir); err != nil {
		return nil, err
	}
	if cfg.ChromePath, err = pathField(table, luaFieldChromePath); err != nil {
		return nil, err
	}
	if cfg.DownloadBaseURL, err = stringField(table, luaFieldDownloadBaseURL); err != nil {
		return nil, err
	}
	if cfg.VersionsURL, err = stringField(table, luaFieldVersionsURL); err != nil {
		return nil, err
	}
	if cfg.DebugPort, err = intField(table, luaFieldDebugPort); err != nil {
		return nil, err
	}
	if cfg.MaxConnectionRetries, err = intField(table, luaFieldMaxRetries); err != nil {
		return nil, err
	}

	switch v := table.RawGetString(luaFieldNoSandbox); v.Type() {
	case lua.LTNil:
	case lua.LTBool:
		cfg.NoSandbox = bool(v.(lua.LBool))
	default:
		return nil, fieldTypeError(luaFieldNoSandbox, "boolean", v)
	}

	switch v := table.RawGetString(luaFieldLaunchArgs); v.Type() {
	case lua.LTNil:
	case lua.LTTable:
		cfg.LaunchArgs = extractStrings(v.(*lua.LTable))
	default:
		return nil, fieldTypeError(luaFieldLaunchArgs, "table", v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return cfg, nil
}

func stringField(table *lua.LTable, name string) (string, error) {
	switch v := table.RawGetString(name); v.Type() {
	case lua.LTNil:
		return "", nil
	case lua.LTString:
		return v.String(), nil
	default:
		return "", fieldTypeError(name, "string", v)
	}
}

func pathField(table *lua.LTable, name string) (string, error) {
	s, err := stringField(table, name)
	if err != nil || s == "" {
		return s, err
	}
	expanded, err := expandHome(s)
	if err != nil {
		return "", &ParseError{Message: fmt.Sprintf("invalid '%s'", name), Detail: err.Error()}
	}
	return expanded, nil
}

func intField(table *lua.LTable, name string) (int, error) {
	switch v := table.RawGetString(name); v.Type() {
	case lua.LTNil:
		return 0, nil
	case lua.LTNumber:
		n := float64(lua.LVAsNumber(v))
		if n != float64(int(n)) {
			return 0, &ParseError{Message: fmt.Sprintf("invalid '%s'", name), Detail: fmt.Sprintf("expected an integer, got %v", n)}
		}
		return int(n), nil
	default:
		return 0, fieldTypeError(name, "number", v)
	}
}

// extractStrings collects the string elements of an array table in order.
// nil holes (from platform conditionals like: platform.is_linux and
// "--flag" or nil) and non-strings are skipped.
func extractStrings(table *lua.LTable) []string {
	var out []string
	for i := 1; i <= table.MaxN(); i++ {
		if v := table.RawGetInt(i); v.Type() == lua.LTString {
			out = append(out, v.String())
		}
	}
	return out
}

func fieldTypeError(name, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("invalid '%s'", name),
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}

	prefix := parseErr.Message
	if parseErr.Path != "" {
		prefix = parseErr.Path + ": " + prefix
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", prefix, parseErr.Detail)
	}
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", prefix, detail)
}
