package custom

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/source"
	lua "github.com/yuin/gopher-lua"
)

// luaSource serializes calls into its state; an LState is single threaded.
type luaSource struct {
	name string

	mu    sync.Mutex
	state *lua.LState
}

func newLuaSource(name string, state *lua.LState) *luaSource {
	return &luaSource{name: name, state: state}
}

func (s *luaSource) Name() string {
	return s.name
}

func (s *luaSource) ID() string {
	return IDfromName(s.name)
}

func (s *luaSource) Search(ctx context.Context, query string) ([]*source.Video, error) {
	val, err := s.call(ctx, constant.SearchVideosFn, lua.LTTable, lua.LString(query))
	if err != nil {
		return nil, err
	}

	var (
		videos []*source.Video
		errs   []error
	)

	val.(*lua.LTable).ForEach(func(k, v lua.LValue) {
		if k.Type() != lua.LTNumber || v.Type() != lua.LTTable {
			return
		}

		video, err := videoFromTable(v.(*lua.LTable))
		if err != nil {
			errs = append(errs, err)
			return
		}

		video.Source = s
		videos = append(videos, video)
	})

	if len(videos) == 0 && len(errs) > 0 {
		return nil, errs[0]
	}

	return videos, nil
}

func (s *luaSource) VideoOf(ctx context.Context, id string) (*source.Video, error) {
	val, err := s.call(ctx, constant.VideoByIDFn, lua.LTTable, lua.LString(id))
	if err != nil {
		return nil, err
	}

	video, err := videoFromTable(val.(*lua.LTable))
	if err != nil {
		return nil, err
	}

	video.Source = s
	return video, nil
}

// call runs a global function under ctx and checks its single return value.
func (s *luaSource) call(ctx context.Context, fn string, retType lua.LValueType, args ...lua.LValue) (lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	luaFn := s.state.GetGlobal(fn)
	if luaFn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("function %s is not defined", fn)
	}

	s.state.SetContext(ctx)
	defer s.state.RemoveContext()

	err := s.state.CallByParam(lua.P{
		Fn:      luaFn,
		NRet:    1,
		Protect: true,
	}, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s: %s: %s", s.name, fn, strings.TrimSpace(err.Error()))
	}

	ret := s.state.Get(-1)
	s.state.Pop(1)

	if ret.Type() != retType {
		return nil, fmt.Errorf("%s: %s returned %s, expected %s", s.name, fn, ret.Type(), retType)
	}

	return ret, nil
}
