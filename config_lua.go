// config_lua.go - Lua options file

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/golang/glog"
	lua "github.com/yuin/gopher-lua"

	"github.com/intuitionamiga/ieasm/assembler"
)

// DefaultConfigFile is loaded from the working directory when no --config
// is given.
const DefaultConfigFile = "ieasm.lua"

// luaOption applies one key of the ieasm table.
type luaOption func(opts *assembler.Options, v lua.LValue) error

var luaOptions = map[string]luaOption{
	"cpu": func(o *assembler.Options, v lua.LValue) error {
		s, err := luaString(v)
		o.CPU = s
		return err
	},
	"origin": func(o *assembler.Options, v lua.LValue) error {
		n, err := luaInt(v)
		o.Origin = n
		return err
	},
	"max_address": func(o *assembler.Options, v lua.LValue) error {
		n, err := luaInt(v)
		o.MaxAddress = n
		return err
	},
	"max_passes": func(o *assembler.Options, v lua.LValue) error {
		n, err := luaInt(v)
		o.MaxPasses = int(n)
		return err
	},
	"case_insensitive": func(o *assembler.Options, v lua.LValue) error {
		b, err := luaBool(v)
		o.CaseInsensitive = b
		return err
	},
	"warnings_as_errors": func(o *assembler.Options, v lua.LValue) error {
		b, err := luaBool(v)
		o.WarningsAsErrors = b
		return err
	},
	"big_endian": func(o *assembler.Options, v lua.LValue) error {
		b, err := luaBool(v)
		o.BigEndian = b
		return err
	},
	"encoding": func(o *assembler.Options, v lua.LValue) error {
		s, err := luaString(v)
		o.Encoding = s
		return err
	},
	"include": func(o *assembler.Options, v lua.LValue) error {
		t, ok := v.(*lua.LTable)
		if !ok {
			return fmt.Errorf("expected a list of directories, got %s", v.Type())
		}
		for i := 1; i <= t.Len(); i++ {
			s, err := luaString(t.RawGetInt(i))
			if err != nil {
				return err
			}
			o.IncludePaths = append(o.IncludePaths, s)
		}
		return nil
	},
	"defines": func(o *assembler.Options, v lua.LValue) error {
		t, ok := v.(*lua.LTable)
		if !ok {
			return fmt.Errorf("expected a table of NAME = value, got %s", v.Type())
		}
		if o.Defines == nil {
			o.Defines = make(map[string]int64)
		}
		var err error
		t.ForEach(func(k, val lua.LValue) {
			if err != nil {
				return
			}
			name, ok := k.(lua.LString)
			if !ok {
				err = fmt.Errorf("define names must be strings, got %s", k.Type())
				return
			}
			var n int64
			if n, err = luaInt(val); err == nil {
				o.Defines[string(name)] = n
			}
		})
		return err
	},
}

func luaString(v lua.LValue) (string, error) {
	s, ok := v.(lua.LString)
	if !ok {
		return "", fmt.Errorf("expected a string, got %s", v.Type())
	}
	return string(s), nil
}

func luaInt(v lua.LValue) (int64, error) {
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %s", v.Type())
	}
	if float64(n) != float64(int64(n)) {
		return 0, fmt.Errorf("expected an integer, got %v", float64(n))
	}
	return int64(n), nil
}

func luaBool(v lua.LValue) (bool, error) {
	b, ok := v.(lua.LBool)
	if !ok {
		return false, fmt.Errorf("expected a boolean, got %s", v.Type())
	}
	return bool(b), nil
}

// newConfigState opens the libraries a config script may use. io and os
// stay closed.
func newConfigState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, pair := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(pair.fn))
		L.Push(lua.LString(pair.name))
		L.Call(1, 0)
	}
	return L
}

// LoadLuaConfig runs the script at path and applies its global ieasm table
// to opts.
func LoadLuaConfig(path string, opts *assembler.Options) error {
	L := newConfigState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return applyLuaTable(path, L.GetGlobal("ieasm"), opts)
}

// LoadLuaConfigString is LoadLuaConfig for an in-memory script.
func LoadLuaConfigString(name, script string, opts *assembler.Options) error {
	L := newConfigState()
	defer L.Close()

	if err := L.DoString(script); err != nil {
		return fmt.Errorf("config %s: %w", name, err)
	}
	return applyLuaTable(name, L.GetGlobal("ieasm"), opts)
}

func applyLuaTable(name string, v lua.LValue, opts *assembler.Options) error {
	if v == lua.LNil {
		return fmt.Errorf("config %s: no ieasm table defined", name)
	}
	t, ok := v.(*lua.LTable)
	if !ok {
		return fmt.Errorf("config %s: ieasm must be a table, got %s", name, v.Type())
	}

	// Apply keys in a stable order so errors are reproducible.
	var keys []string
	var badKey error
	t.ForEach(func(k, _ lua.LValue) {
		s, ok := k.(lua.LString)
		if !ok {
			badKey = fmt.Errorf("config %s: keys must be strings, got %s", name, k.Type())
			return
		}
		keys = append(keys, string(s))
	})
	if badKey != nil {
		return badKey
	}
	sort.Strings(keys)

	for _, k := range keys {
		apply, ok := luaOptions[k]
		if !ok {
			return fmt.Errorf("config %s: unknown key %q", name, k)
		}
		if err := apply(opts, t.RawGetString(k)); err != nil {
			return fmt.Errorf("config %s: %s: %w", name, k, err)
		}
		glog.V(1).Infof("config %s: %s set", name, k)
	}
	return nil
}

// loadDefaultConfig applies explicit when set, otherwise DefaultConfigFile
// if it exists.
func loadDefaultConfig(explicit string, opts *assembler.Options) error {
	if explicit != "" {
		return LoadLuaConfig(explicit, opts)
	}
	if _, err := os.Stat(DefaultConfigFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return LoadLuaConfig(DefaultConfigFile, opts)
}
