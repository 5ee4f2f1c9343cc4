package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxLuaVM strips everything from a Lua VM that could reach outside
// the config: os and io, module loading (require, dofile, loadfile, load,
// loadstring) and debug. string, table, math and the basic functions stay.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range []string{"os", "io", "require", "dofile", "loadfile", "load", "loadstring", "debug"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	sandboxLuaVM(L)
	return L
}
