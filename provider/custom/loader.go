// Package custom runs user Lua scripts as descriptor providers.
package custom

import (
	"fmt"

	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/internal/scraper"
	"github.com/coursecast/coursecast/source"
	"github.com/coursecast/coursecast/util"
	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
)

// IDfromName is the provider id of the script with the given basename.
func IDfromName(name string) string {
	return name + " custom"
}

// LoadSource runs the script at path and checks that it defines every
// required global function.
func LoadSource(path string) (source.Source, error) {
	state := lua.NewState()
	libs.Preload(state)
	registerHelpers(state)

	if err := scraper.PreCompileAndLoad(state, path); err != nil {
		state.Close()
		return nil, err
	}

	name := util.FileStem(path)

	for _, fn := range []string{constant.SearchVideosFn, constant.VideoByIDFn} {
		if state.GetGlobal(fn).Type() != lua.LTFunction {
			state.Close()
			return nil, fmt.Errorf("function %s is required but not defined in %s", fn, name)
		}
	}

	return newLuaSource(name, state), nil
}

// registerHelpers exposes a "coursecast" module with url helpers.
func registerHelpers(L *lua.LState) {
	L.PreloadModule(constant.Coursecast, func(L *lua.LState) int {
		mod := L.NewTable()
		L.SetField(mod, "resolve", L.NewFunction(func(L *lua.LState) int {
			resolved, err := source.ResolveURL(L.CheckString(1), L.CheckString(2))
			if err != nil {
				L.RaiseError("resolve: %s", err.Error())
				return 0
			}
			L.Push(lua.LString(resolved))
			return 1
		}))
		L.SetField(mod, "version", lua.LString(constant.Version))
		L.Push(mod)
		return 1
	})
}
