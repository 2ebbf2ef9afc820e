package shaders

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

func CompileShaderFromFile(path string, shaderType uint32) (uint32, error) {
	sourceBytes, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read shader file %q: %w", path, err)
	}

	shader, err := CompileShaderFromSource(string(sourceBytes), shaderType)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return shader, nil
}

func CompileShaderFromSource(source string, shaderType uint32) (uint32, error) {
	if !strings.HasSuffix(source, "\x00") {
		source += "\x00"
	}
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logMsg := make([]byte, logLength+1)
		gl.GetShaderInfoLog(shader, logLength, nil, &logMsg[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %s", strings.TrimRight(string(logMsg), "\x00"))
	}

	return shader, nil
}

// Source is a named vertex and fragment shader pair.
type Source struct {
	Name     string
	Vertex   string
	Fragment string
}

// Program compiles and links src. Files named <Name>.vert.glsl and
// <Name>.frag.glsl in the override directory replace the built-in source.
func Program(src Source) (uint32, error) {
	dir := OverrideDir()
	vertShader, err := compile(dir, VertexPath(dir, src.Name), src.Vertex, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("%s vertex: %w", src.Name, err)
	}
	defer gl.DeleteShader(vertShader)
	fragShader, err := compile(dir, FragmentPath(dir, src.Name), src.Fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("%s fragment: %w", src.Name, err)
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logMsg := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &logMsg[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link %s program: %s", src.Name, strings.TrimRight(string(logMsg), "\x00"))
	}
	return program, nil
}

func compile(dir, path, fallback string, shaderType uint32) (uint32, error) {
	if dir != "" {
		if _, err := os.Stat(path); err == nil {
			return CompileShaderFromFile(path, shaderType)
		}
	}
	return CompileShaderFromSource(fallback, shaderType)
}

// Uniforms looks up uniform locations by name. Missing uniforms are an
// error so renames in GLSL do not fail silently.
func Uniforms(program uint32, names ...string) (map[string]int32, error) {
	out := make(map[string]int32, len(names))
	var errs []error
	for _, n := range names {
		loc := gl.GetUniformLocation(program, gl.Str(n+"\x00"))
		if loc < 0 {
			errs = append(errs, fmt.Errorf("uniform %s not found", n))
			continue
		}
		out[n] = loc
	}
	return out, errors.Join(errs...)
}
