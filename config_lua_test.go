// config_lua_test.go

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
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/intuitionamiga/ieasm/assembler"
)

func TestLuaConfig_AllKeys(t *testing.T) {
	script := `
ieasm = {
	cpu = "ie64",
	origin = 0x2000,
	max_address = 0xFFFFFFFF,
	max_passes = 8,
	case_insensitive = true,
	warnings_as_errors = true,
	big_endian = false,
	encoding = "petscii",
	include = { "lib", "inc" },
	defines = { DEBUG = 1, SCREEN = 0xA0000 },
}
`
	opts := assembler.DefaultOptions()
	if err := LoadLuaConfigString("test.lua", script, &opts); err != nil {
		t.Fatal(err)
	}
	if opts.CPU != "ie64" || opts.Origin != 0x2000 || opts.MaxAddress != 0xFFFFFFFF || opts.MaxPasses != 8 {
		t.Errorf("numeric/string keys not applied: %+v", opts)
	}
	if !opts.CaseInsensitive || !opts.WarningsAsErrors || opts.BigEndian {
		t.Errorf("boolean keys not applied: %+v", opts)
	}
	if opts.Encoding != "petscii" {
		t.Errorf("encoding = %q", opts.Encoding)
	}
	if !reflect.DeepEqual(opts.IncludePaths, []string{"lib", "inc"}) {
		t.Errorf("include = %v", opts.IncludePaths)
	}
	want := map[string]int64{"DEBUG": 1, "SCREEN": 0xA0000}
	if !reflect.DeepEqual(opts.Defines, want) {
		t.Errorf("defines = %v, want %v", opts.Defines, want)
	}
}

func TestLuaConfig_ScriptLogic(t *testing.T) {
	script := `
local base = 0x1000
ieasm = { origin = base * 4, cpu = string.lower("IE64") }
`
	opts := assembler.DefaultOptions()
	if err := LoadLuaConfigString("test.lua", script, &opts); err != nil {
		t.Fatal(err)
	}
	if opts.Origin != 0x4000 || opts.CPU != "ie64" {
		t.Errorf("got origin $%X cpu %q", opts.Origin, opts.CPU)
	}
}

func TestLuaConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"no table", `x = 1`, "no ieasm table"},
		{"not a table", `ieasm = 5`, "must be a table"},
		{"unknown key", `ieasm = { colour = true }`, `unknown key "colour"`},
		{"wrong type", `ieasm = { cpu = 64 }`, "expected a string"},
		{"fractional", `ieasm = { origin = 1.5 }`, "expected an integer"},
		{"bad include", `ieasm = { include = "lib" }`, "list of directories"},
		{"syntax", `ieasm = {`, "test.lua"},
		{"no io library", `io.write("x") ieasm = {}`, "test.lua"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := assembler.DefaultOptions()
			err := LoadLuaConfigString("test.lua", tc.script, &opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLuaConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.lua")
	if err := os.WriteFile(path, []byte(`ieasm = { cpu = "ie64" }`), 0644); err != nil {
		t.Fatal(err)
	}
	opts := assembler.DefaultOptions()
	if err := loadDefaultConfig(path, &opts); err != nil {
		t.Fatal(err)
	}
	if opts.CPU != "ie64" {
		t.Errorf("cpu = %q", opts.CPU)
	}

	if err := loadDefaultConfig(filepath.Join(t.TempDir(), "missing.lua"), &opts); err == nil {
		t.Error("explicit missing config should fail")
	}
}
