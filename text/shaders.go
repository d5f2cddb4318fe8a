package text

import "github.com/BergerAPI/renderer/gpu"

// Uniform names set on the text program.
const (
	uniformProjection = "projection"
	uniformCellDim    = "cellDim"
	uniformMask       = "mask"
)

// The vertex stage expands every instance to a quad. cellDim holds the
// nominal cell width and the distance from the top of a line to its
// baseline, so (x, y) passed to DrawString is the top-left of the line.

const textVertexGLSL = `#version 330 core

layout(location = 0) in vec2 pos;
layout(location = 1) in vec4 glyph;
layout(location = 2) in vec4 uv;
layout(location = 3) in vec4 textColor;

out vec2 texCoords;
flat out vec3 fg;
flat out int multicolor;

uniform mat4 projection;
uniform vec2 cellDim;

void main() {
    vec2 corner;
    corner.x = (gl_VertexID == 0 || gl_VertexID == 1) ? 1.0 : 0.0;
    corner.y = (gl_VertexID == 0 || gl_VertexID == 3) ? 0.0 : 1.0;

    vec2 origin = pos + vec2(glyph.x, cellDim.y - glyph.y);
    gl_Position = projection * vec4(origin + corner * glyph.zw, 0.0, 1.0);
    texCoords = uv.xy + corner * uv.zw;
    fg = textColor.rgb;
    multicolor = textColor.a > 0.0 ? 1 : 0;
}
`

const textFragmentGLSL = `#version 330 core

in vec2 texCoords;
flat in vec3 fg;
flat in int multicolor;

layout(location = 0, index = 0) out vec4 color;
layout(location = 0, index = 1) out vec4 alphaMask;

uniform sampler2D mask;

void main() {
    if (multicolor == 1) {
        color = texture(mask, texCoords);
        alphaMask = vec4(color.a);
        return;
    }
    vec3 coverage = texture(mask, texCoords).rgb;
    alphaMask = vec4(coverage, coverage.r);
    color = vec4(fg, 1.0);
}
`

// textWGSL is the same program for WebGPU targets. Without dual-source
// blending the coverage is folded into a premultiplied color.
const textWGSL = `struct Uniforms {
    projection: mat4x4<f32>,
    cell_dim: vec4<f32>,
}

@group(0) @binding(0) var<uniform> u: Uniforms;
@group(0) @binding(1) var mask: texture_2d<f32>;
@group(0) @binding(2) var mask_sampler: sampler;

struct InstanceInput {
    @location(0) pos: vec2<f32>,
    @location(1) glyph: vec4<i32>,
    @location(2) uv: vec4<f32>,
    @location(3) color: vec4<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) tex_coords: vec2<f32>,
    @location(1) fg: vec4<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) vid: u32, inst: InstanceInput) -> VertexOutput {
    let corner = vec2<f32>(
        select(0.0, 1.0, vid == 0u || vid == 1u),
        select(0.0, 1.0, vid == 1u || vid == 2u)
    );
    let g = vec4<f32>(inst.glyph);
    let origin = inst.pos + vec2<f32>(g.x, u.cell_dim.y - g.y);

    var out: VertexOutput;
    out.position = u.projection * vec4<f32>(origin + corner * g.zw, 0.0, 1.0);
    out.tex_coords = inst.uv.xy + corner * inst.uv.zw;
    out.fg = inst.color;
    return out;
}

@fragment
fn fs_main(v: VertexOutput) -> @location(0) vec4<f32> {
    let texel = textureSample(mask, mask_sampler, v.tex_coords);
    if (v.fg.a > 0.0) {
        return vec4<f32>(texel.rgb * texel.a, texel.a);
    }
    let coverage = max(max(texel.r, texel.g), texel.b);
    return vec4<f32>(v.fg.rgb * coverage, coverage);
}
`

// textSources returns the text program in every supported dialect.
func textSources() gpu.ShaderSources {
	return gpu.ShaderSources{
		Name: "text",
		GLSL: gpu.GLSLSources{
			Vertex:   textVertexGLSL,
			Fragment: textFragmentGLSL,
		},
		WGSL:  textWGSL,
		CPU:   cpuShader{},
		Blend: gpu.BlendDualSource,
	}
}
