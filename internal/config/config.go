// Package config reads the stride.json project document the CLI
// consumes. The compiler core does not define this format; it only needs
// the entry-point path and the compilation mode out of it.
package config

import (
	"encoding/json"
	"os"
	"runtime"

	"github.com/stride-lang/stride/internal/diag"
	"github.com/stride-lang/stride/internal/source"
)

// Mode selects how the lowered module is consumed.
type Mode string

const (
	CompileNative Mode = "COMPILE_NATIVE"
	CompileJIT    Mode = "COMPILE_JIT"
)

// Dependency is one entry of the project's dependencies array.
type Dependency struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"path"`
}

// Project is the parsed project document, with defaults applied for every
// omitted field.
type Project struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Main         string       `json:"main"`
	BuildPath    string       `json:"buildPath"`
	Dependencies []Dependency `json:"dependencies"`
	Target       string       `json:"target"`
	Mode         Mode         `json:"mode"`
}

// HostTarget is the default compilation target: the machine the compiler
// runs on.
func HostTarget() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Load reads and parses the project document at path, applying defaults:
// main ./src/main.sr, buildPath ./build/, target = host, mode COMPILE_JIT.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.New(diag.IOError, nil, source.Position{}, "cannot open project file %s: %v", path, err)
	}
	return Parse(path, data)
}

// Parse decodes a project document from raw bytes.
func Parse(path string, data []byte) (*Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, diag.New(diag.IOError, nil, source.Position{}, "malformed project file %s: %v", path, err)
	}
	if p.Main == "" {
		p.Main = "./src/main.sr"
	}
	if p.BuildPath == "" {
		p.BuildPath = "./build/"
	}
	if p.Target == "" {
		p.Target = HostTarget()
	}
	if p.Mode == "" {
		p.Mode = CompileJIT
	}
	if p.Mode != CompileJIT && p.Mode != CompileNative {
		return nil, diag.New(diag.IOError, nil, source.Position{}, "project file %s: unknown mode %q", path, p.Mode)
	}
	return &p, nil
}
