package foliage

import (
	"strconv"
	"strings"
	"text/template"
)

var glslFuncs = template.FuncMap{
	"f": func(v float64) string {
		s := strconv.FormatFloat(v, 'f', -1, 32)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s
	},
}

var vertexTemplate = template.Must(template.New("foliage.vert").Funcs(glslFuncs).Parse(`#version 410 core

layout(location = 0) in vec3 aScatterPos;
layout(location = 1) in vec3 aTreePos;
layout(location = 2) in float aRandom;

uniform float uTime;
uniform float uMix;
uniform float uPixelRatio;
uniform vec3 uColorHigh;
uniform vec3 uColorLow;
uniform mat4 uModelView;
uniform mat4 uProjection;

out float vAlpha;
out vec3 vColor;

float easeInOutCubic(float x) {
    x = clamp(x, 0.0, 1.0);
    return x < 0.5 ? 4.0 * x * x * x : 1.0 - pow(-2.0 * x + 2.0, 3.0) / 2.0;
}

vec3 impliedNormal(vec3 p) {
    float r = length(p.xz);
    return r < 1e-6 ? vec3(0.0) : vec3(p.x / r, 0.0, p.z / r);
}

void main() {
    float t = uTime * ({{f .BaseSpeed}} + aRandom * {{f .SpeedVariance}});

    vec3 wobble = vec3(
        sin(t + aScatterPos.y * {{f .WobbleFrequency}}) * {{f .WobbleAmplitude}},
        cos(t + aScatterPos.x * {{f .WobbleFrequency}}) * {{f .WobbleAmplitude}},
        sin(t + aScatterPos.z * {{f .WobbleFrequency}}) * {{f .WobbleAmplitude}}
    );

    float mixVal = easeInOutCubic(uMix);
    vec3 pos = mix(aScatterPos + wobble, aTreePos, mixVal);

    if (mixVal > {{f .BreathThreshold}}) {
        pos += impliedNormal(aTreePos) * (sin(t * {{f .BreathFrequency}}) * {{f .BreathAmplitude}});
    }

    vec4 mvPosition = uModelView * vec4(pos, 1.0);
    gl_Position = uProjection * mvPosition;
    gl_PointSize = ({{f .BaseSize}} + aRandom * {{f .SizeVariance}}) * uPixelRatio * (15.0 / -mvPosition.z);

    vAlpha = {{f .AlphaBase}} + {{f .AlphaPulse}} * sin(t + aRandom * {{f .AlphaPhase}});

    float heightFactor = (pos.y + {{f .HeightOffset}}) / {{f .HeightRange}};
    vColor = mix(uColorLow, uColorHigh, aRandom * {{f .ColorPhaseBias}} + mixVal * heightFactor * {{f .ColorHeightBias}});
}
`))

// FragmentShader draws each point as a soft disc.
const FragmentShader = `#version 410 core

in float vAlpha;
in vec3 vColor;

out vec4 fragColor;

void main() {
    float r = distance(gl_PointCoord, vec2(0.5));
    if (r > 0.5) discard;

    float glow = 1.0 - (r * 2.0);
    glow = pow(glow, 2.0);

    fragColor = vec4(vColor, vAlpha * glow);
}
`

// VertexShader renders the foliage vertex stage with the package constants.
func VertexShader() string {
	params := map[string]float64{
		"BaseSpeed":       BaseSpeed,
		"SpeedVariance":   SpeedVariance,
		"WobbleAmplitude": WobbleAmplitude,
		"WobbleFrequency": WobbleFrequency,
		"BreathThreshold": BreathThreshold,
		"BreathAmplitude": BreathAmplitude,
		"BreathFrequency": BreathFrequency,
		"BaseSize":        BaseSize,
		"SizeVariance":    SizeVariance,
		"AlphaBase":       AlphaBase,
		"AlphaPulse":      AlphaPulse,
		"AlphaPhase":      AlphaPhase,
		"ColorPhaseBias":  ColorPhaseBias,
		"ColorHeightBias": ColorHeightBias,
		"HeightOffset":    HeightOffset,
		"HeightRange":     HeightRange,
	}
	var b strings.Builder
	if err := vertexTemplate.Execute(&b, params); err != nil {
		panic(err)
	}
	return b.String()
}
