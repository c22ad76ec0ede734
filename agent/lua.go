package agent

import (
	"context"
	"fmt"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
)

// Lua is an agent backed by a sandboxed Lua script. The script must define a
// global function respond(prompt) that returns a string. A Lua agent is not
// safe for concurrent use; the engine calls agents sequentially.
type Lua struct {
	name   string
	script string
	L      *lua.LState
	fn     *lua.LFunction
}

// NewLua loads the script at path into a fresh sandboxed VM. The helpers
// rand(n), option_count(prompt) and is_yes_no(prompt) are available to it.
func NewLua(name, path string, r Rand) (*Lua, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	registerHelpers(L, r)

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("executing %s: %w", filepath.Base(path), err)
	}

	fn, ok := L.GetGlobal("respond").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("%s: respond(prompt) is not defined", filepath.Base(path))
	}

	return &Lua{name: name, script: filepath.Base(path), L: L, fn: fn}, nil
}

func (a *Lua) Name() string  { return a.name }
func (a *Lua) Model() string { return "lua:" + a.script }

func (a *Lua) GetResponse(ctx context.Context, prompt string) (string, error) {
	a.L.SetContext(ctx)
	defer a.L.RemoveContext()

	err := a.L.CallByParam(lua.P{Fn: a.fn, NRet: 1, Protect: true}, lua.LString(prompt))
	if err != nil {
		return "", fmt.Errorf("%s: respond: %w", a.script, err)
	}
	ret := a.L.Get(-1)
	a.L.Pop(1)
	if ret == lua.LNil {
		return "", nil
	}
	return lua.LVAsString(ret), nil
}

// Close releases the Lua VM.
func (a *Lua) Close() {
	a.L.Close()
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach the filesystem or break determinism.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}

	// Scripts draw randomness from rand(n) so games stay reproducible.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
		tbl.RawSetString("random", lua.LNil)
	}
}

func registerHelpers(L *lua.LState, r Rand) {
	// rand(n) returns an integer in [1, n].
	L.SetGlobal("rand", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n < 1 {
			L.ArgError(1, "n must be positive")
			return 0
		}
		L.Push(lua.LNumber(r.Intn(n) + 1))
		return 1
	}))

	L.SetGlobal("option_count", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(OptionCount(L.CheckString(1))))
		return 1
	}))

	L.SetGlobal("is_yes_no", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(IsYesNo(L.CheckString(1))))
		return 1
	}))
}
