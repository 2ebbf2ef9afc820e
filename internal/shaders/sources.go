package shaders

// Ornament draws one archetype mesh per instance. The model matrix takes
// attribute slots 2 to 5.
var Ornament = Source{
	Name: "ornament",
	Vertex: `#version 410 core
layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in mat4 aModel;
layout(location = 6) in vec3 aColor;

uniform mat4 uScene;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;
out vec3 vWorld;
out vec3 vColor;

void main() {
    mat4 model = uScene * aModel;
    vec4 world = model * vec4(aPosition, 1.0);
    vWorld = world.xyz;
    vNormal = normalize(mat3(model) * aNormal);
    vColor = aColor;
    gl_Position = uProjection * uView * world;
}
`,
	Fragment: `#version 410 core
in vec3 vNormal;
in vec3 vWorld;
in vec3 vColor;

uniform vec3 uEye;
uniform vec3 uLightDir;
uniform float uMetalness;
uniform float uEmissive;

out vec4 FragColor;

void main() {
    vec3 n = normalize(vNormal);
    vec3 l = normalize(-uLightDir);
    vec3 v = normalize(uEye - vWorld);
    vec3 h = normalize(l + v);
    float diffuse = max(dot(n, l), 0.0);
    float spec = pow(max(dot(n, h), 0.0), mix(16.0, 96.0, uMetalness));
    vec3 specColor = mix(vec3(0.9), vColor, uMetalness);
    vec3 color = vColor * (0.25 + 0.75 * diffuse * (1.0 - 0.5 * uMetalness))
        + specColor * spec
        + vColor * uEmissive;
    FragColor = vec4(color, 1.0);
}
`,
}

// Photo draws one part of a polaroid frame. With uUseTexture set the
// surface samples the photo, mapping the mesh's XY extent onto UV.
var Photo = Source{
	Name: "photo",
	Vertex: `#version 410 core
layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aNormal;

uniform mat4 uScene;
uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform vec2 uExtent;

out vec3 vNormal;
out vec2 vUV;

void main() {
    mat4 model = uScene * uModel;
    vNormal = normalize(mat3(model) * aNormal);
    vUV = aPosition.xy / uExtent + 0.5;
    gl_Position = uProjection * uView * model * vec4(aPosition, 1.0);
}
`,
	Fragment: `#version 410 core
in vec3 vNormal;
in vec2 vUV;

uniform vec3 uLightDir;
uniform vec3 uColor;
uniform int uUseTexture;
uniform sampler2D uTexture;

out vec4 FragColor;

void main() {
    vec3 base = uColor;
    if (uUseTexture == 1) {
        base = texture(uTexture, vUV).rgb;
    }
    float diffuse = abs(dot(normalize(vNormal), normalize(-uLightDir)));
    FragColor = vec4(base * (0.45 + 0.55 * diffuse), 1.0);
}
`,
}
