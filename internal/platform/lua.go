package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// luaGlobal is the name of the table config files read the host from.
const luaGlobal = "platform"

// InjectPlatformTable exposes info to Lua as the read-only global
// "platform". Besides the raw OS facts it carries browser_platform, the
// build flavor that would be downloaded, and when(cond, value) for
// conditional settings such as
//
//	channel = platform.when(platform.is_arm64, "beta") or "stable"
func InjectPlatformTable(L *lua.LState, info *Info) error {
	bp, ok := info.BrowserPlatform()
	if !ok {
		bp = DefaultBrowserPlatform
	}

	var distro lua.LValue = lua.LNil
	if info.IsLinux() && info.Platform != "" {
		distro = lua.LString(info.Platform)
	}

	fields := map[string]lua.LValue{
		"os":               lua.LString(info.OS),
		"arch":             lua.LString(info.Arch),
		"arch_raw":         lua.LString(info.ArchRaw),
		"distro":           distro,
		"browser_platform": lua.LString(bp),
		"is_linux":         lua.LBool(info.IsLinux()),
		"is_macos":         lua.LBool(info.IsMacOS()),
		"is_windows":       lua.LBool(info.IsWindows()),
		"is_arm64":         lua.LBool(info.IsARM64()),
		"when":             L.NewFunction(luaWhen),
	}

	t := L.CreateTable(0, len(fields))
	for name, v := range fields {
		t.RawSetString(name, v)
	}
	L.SetGlobal(luaGlobal, readOnlyProxy(L, t))
	return nil
}

// luaWhen returns its second argument when the first is true, nil otherwise.
func luaWhen(L *lua.LState) int {
	if L.CheckBool(1) {
		L.Push(L.Get(2))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

// readOnlyProxy returns an empty table whose metatable forwards reads to
// t and rejects writes.
func readOnlyProxy(L *lua.LState, t *lua.LTable) *lua.LTable {
	mt := L.CreateTable(0, 3)
	mt.RawSetString("__index", t)
	mt.RawSetString("__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("%s table is read-only", luaGlobal)
		return 0
	}))
	mt.RawSetString("__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)
	return proxy
}
