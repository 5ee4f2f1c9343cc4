package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Generator renders a Config as a Lua config file.
type Generator struct {
	indent string // Indentation string (default: two spaces)
	now    func() time.Time
}

// NewGenerator creates a new Lua config generator.
func NewGenerator() *Generator {
	return &Generator{indent: "  ", now: time.Now}
}

// Generate renders the browser table. Zero fields are omitted so that
// the defaults keep applying when the file is loaded again.
func (g *Generator) Generate(cfg *Config) string {
	var buf bytes.Buffer

	buf.WriteString("-- browserctl configuration\n")
	buf.WriteString("-- Generated: ")
	buf.WriteString(g.now().Format(time.RFC3339))
	buf.WriteString("\n\n")

	buf.WriteString(luaGlobalBrowser + " = {\n")

	g.writeString(&buf, luaFieldChannel, cfg.Channel)
	g.writeString(&buf, luaFieldCacheDir, cfg.CacheDir)
	g.writeString(&buf, luaFieldChromePath, cfg.ChromePath)

	if len(cfg.LaunchArgs) > 0 {
		fmt.Fprintf(&buf, "%s%s = {\n", g.indent, luaFieldLaunchArgs)
		for _, arg := range cfg.LaunchArgs {
			fmt.Fprintf(&buf, "%s%s%s,\n", g.indent, g.indent, g.quoteLuaString(arg))
		}
		fmt.Fprintf(&buf, "%s},\n", g.indent)
	}

	if cfg.NoSandbox {
		fmt.Fprintf(&buf, "%s%s = true,\n", g.indent, luaFieldNoSandbox)
	}
	g.writeInt(&buf, luaFieldDebugPort, cfg.DebugPort)
	g.writeInt(&buf, luaFieldMaxRetries, cfg.MaxConnectionRetries)
	g.writeString(&buf, luaFieldDownloadBaseURL, cfg.DownloadBaseURL)
	g.writeString(&buf, luaFieldVersionsURL, cfg.VersionsURL)

	buf.WriteString("}\n")
	return buf.String()
}

func (g *Generator) writeString(buf *bytes.Buffer, field, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(buf, "%s%s = %s,\n", g.indent, field, g.quoteLuaString(value))
}

func (g *Generator) writeInt(buf *bytes.Buffer, field string, value int) {
	if value == 0 {
		return
	}
	fmt.Fprintf(buf, "%s%s = %d,\n", g.indent, field, value)
}

// quoteLuaString quotes a string for Lua, handling special characters.
func (g *Generator) quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}
