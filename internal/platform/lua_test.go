package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestInjectPlatformTable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{OS: "linux", Arch: "amd64", ArchRaw: "amd64", Platform: "ubuntu"}
	require.NoError(t, InjectPlatformTable(L, info))

	tests := []struct {
		code string
		want lua.LValue
	}{
		{`return platform.os`, lua.LString("linux")},
		{`return platform.is_linux`, lua.LTrue},
		{`return platform.is_macos`, lua.LFalse},
		{`return platform.distro`, lua.LString("ubuntu")},
		{`return platform.browser_platform`, lua.LString("linux64")},
		{`return platform.when(platform.is_linux, "yes")`, lua.LString("yes")},
		{`return platform.when(platform.is_windows, "yes")`, lua.LNil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			require.NoError(t, L.DoString(tt.code))
			got := L.Get(-1)
			L.Pop(1)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInjectPlatformTable_ReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	require.NoError(t, InjectPlatformTable(L, &Info{OS: "darwin", Arch: "arm64"}))

	err := L.DoString(`platform.os = "linux"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestInjectPlatformTable_UnclassifiedHost(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	require.NoError(t, InjectPlatformTable(L, &Info{OS: "freebsd", Arch: "amd64"}))
	require.NoError(t, L.DoString(`return platform.browser_platform`))
	assert.Equal(t, lua.LString("linux64"), L.Get(-1))
}
