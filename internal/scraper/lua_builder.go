// Package scraper compiles Lua provider scripts once per process.
package scraper

import (
	"sync"

	"github.com/coursecast/coursecast/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

var bytecodeCache sync.Map

// PreCompileAndLoad runs the script at scriptPath in L. The compiled
// prototype is cached by path so later states skip parsing.
func PreCompileAndLoad(L *lua.LState, scriptPath string) error {
	if cached, ok := bytecodeCache.Load(scriptPath); ok {
		L.Push(L.NewFunctionFromProto(cached.(*lua.FunctionProto)))
		return L.PCall(0, lua.MultRet, nil)
	}

	file, err := filesystem.API().Open(scriptPath)
	if err != nil {
		return err
	}
	defer file.Close()

	chunk, err := parse.Parse(file, scriptPath)
	if err != nil {
		return err
	}

	proto, err := lua.Compile(chunk, scriptPath)
	if err != nil {
		return err
	}

	bytecodeCache.Store(scriptPath, proto)

	L.Push(L.NewFunctionFromProto(proto))
	return L.PCall(0, lua.MultRet, nil)
}

// Forget drops the cached prototype for scriptPath.
func Forget(scriptPath string) {
	bytecodeCache.Delete(scriptPath)
}
