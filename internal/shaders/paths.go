package shaders

import (
	"os"
	"path/filepath"
)

// OverrideEnv names a directory of GLSL files that replace the built-in
// shaders, for tweaking looks without rebuilding.
const OverrideEnv = "TREEMORPH_SHADER_DIR"

func OverrideDir() string {
	return os.Getenv(OverrideEnv)
}

func VertexPath(dir, name string) string {
	return filepath.Join(dir, name+".vert.glsl")
}

func FragmentPath(dir, name string) string {
	return filepath.Join(dir, name+".frag.glsl")
}
