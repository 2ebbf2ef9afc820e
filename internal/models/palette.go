package models

import (
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	Gold         = MustHex("#FFD700")
	GoldDim      = MustHex("#B8860B")
	Emerald      = MustHex("#002A18")
	EmeraldLight = MustHex("#046307")
	WhiteWarm    = MustHex("#FFFDD0")
	RedDark      = MustHex("#660000")
	IcicleBlue   = MustHex("#E0FFFF")
)

// Hex parses a #RRGGBB color into 0..1 components.
func Hex(s string) (mgl32.Vec3, error) {
	if len(s) != 7 || s[0] != '#' {
		return mgl32.Vec3{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return mgl32.Vec3{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}

func MustHex(s string) mgl32.Vec3 {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
