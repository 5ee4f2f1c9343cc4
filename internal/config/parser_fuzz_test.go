package config

import (
	"context"
	"testing"
)

func FuzzParser_ParseString(f *testing.F) {
	f.Add(`browser = { channel = "stable" }`)
	f.Add(`browser = { launch_args = { "--lang=en", nil, "--mute-audio" } }`)
	f.Add(`browser = { debug_port = 9222.5 }`)
	f.Add(`browser = "chrome"`)

	parser := NewParser(nil)

	f.Fuzz(func(t *testing.T, luaCode string) {
		_, _ = parser.ParseString(context.Background(), luaCode)
	})
}

func FuzzGenerator_QuoteLuaString(f *testing.F) {
	f.Add("--user-agent=Mozilla/5.0")
	f.Add(`say "hello"`)
	f.Add("line1\nline2")
	f.Add(`C:\Program Files\Google\Chrome\Application\chrome.exe`)

	gen := NewGenerator()

	f.Fuzz(func(t *testing.T, input string) {
		quoted := gen.quoteLuaString(input)
		if len(quoted) < 2 || quoted[0] != '"' || quoted[len(quoted)-1] != '"' {
			t.Errorf("quoteLuaString(%q) = %q, invalid format", input, quoted)
		}
	})
}
