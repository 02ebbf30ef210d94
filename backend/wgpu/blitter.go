package wgpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/acrylic/render"
)

//go:embed shaders/blit.wgsl
var blitShaderSource string

// blitUniformSize is the byte size of the Params uniform.
// Layout: offset (vec2<f32>) + half_pixel (vec2<f32>) + blend (f32) +
// padding to 32 bytes.
const blitUniformSize = 32

// Blitter runs the kernel passes as full-screen fragment draws. One
// shader module carries all five kernels; each pass gets its own
// render pipeline sharing the same layout and sampler.
type Blitter struct {
	dev *Device

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler
	pipelines  map[render.Pass]hal.RenderPipeline
}

// NewBlitter compiles the kernel shaders and builds one pipeline per
// pass.
func NewBlitter(dev *Device) (*Blitter, error) {
	b := &Blitter{
		dev:       dev,
		pipelines: make(map[render.Pass]hal.RenderPipeline),
	}
	if err := b.create(); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

func (b *Blitter) create() error {
	spirv, err := compileShaderToSPIRV(blitShaderSource)
	if err != nil {
		return err
	}
	shader, err := createShaderModule(b.dev.device, "acrylic_blit_shader", spirv)
	if err != nil {
		return fmt.Errorf("wgpu: create shader module: %w", err)
	}
	b.shader = shader

	// Bind group layout:
	//   Binding 0: Params (uniform buffer, fragment)
	//   Binding 1: source texture (fragment)
	//   Binding 2: sampler (fragment)
	//   Binding 3: second source texture, blend pass only (fragment)
	bindLayout, err := b.dev.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "acrylic_blit_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
			{
				Binding:    3,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	b.bindLayout = bindLayout

	pipeLayout, err := b.dev.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "acrylic_blit_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	b.pipeLayout = pipeLayout

	// Linear clamp-to-edge sampling is what every kernel assumes.
	sampler, err := b.dev.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "acrylic_blit_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create sampler: %w", err)
	}
	b.sampler = sampler

	passes := []render.Pass{
		render.PassCopy,
		render.PassDownsample,
		render.PassUpsample,
		render.PassKawase,
		render.PassBlend,
	}
	for _, pass := range passes {
		pipeline, err := b.dev.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  "acrylic_blit_" + pass.String(),
			Layout: b.pipeLayout,
			Vertex: hal.VertexState{
				Module:     b.shader,
				EntryPoint: "vs_main",
			},
			Fragment: &hal.FragmentState{
				Module:     b.shader,
				EntryPoint: fragmentEntry(pass),
				Targets: []gputypes.ColorTargetState{
					{
						Format:    gputypes.TextureFormatRGBA8Unorm,
						WriteMask: gputypes.ColorWriteMaskAll,
					},
				},
			},
			Primitive: gputypes.PrimitiveState{
				Topology: gputypes.PrimitiveTopologyTriangleList,
				CullMode: gputypes.CullModeNone,
			},
			Multisample: gputypes.MultisampleState{
				Count: 1,
				Mask:  0xFFFFFFFF,
			},
		})
		if err != nil {
			return fmt.Errorf("wgpu: create %v pipeline: %w", pass, err)
		}
		b.pipelines[pass] = pipeline
	}
	return nil
}

func fragmentEntry(pass render.Pass) string {
	switch pass {
	case render.PassDownsample:
		return "fs_downsample"
	case render.PassUpsample:
		return "fs_upsample"
	case render.PassKawase:
		return "fs_kawase"
	case render.PassBlend:
		return "fs_blend"
	default:
		return "fs_copy"
	}
}

// Blit executes one kernel pass from src into dst. Both must be
// textures from this backend's Allocator.
func (b *Blitter) Blit(src, dst render.Target, pass render.Pass, params render.BlitParams) error {
	if src == nil || dst == nil {
		return render.ErrNilTarget
	}
	srcTex, ok := src.(*Texture)
	if !ok {
		return fmt.Errorf("wgpu: source is not a GPU texture: %T", src)
	}
	dstTex, ok := dst.(*Texture)
	if !ok {
		return fmt.Errorf("wgpu: destination is not a GPU texture: %T", dst)
	}
	pipeline, ok := b.pipelines[pass]
	if !ok {
		return fmt.Errorf("%w: %v", render.ErrUnknownPass, pass)
	}

	// The blend pass samples a second source; every other pass binds
	// the first source twice to satisfy the shared layout.
	src2Tex := srcTex
	if pass == render.PassBlend {
		if params.Source2 == nil {
			return render.ErrNilTarget
		}
		src2Tex, ok = params.Source2.(*Texture)
		if !ok {
			return fmt.Errorf("wgpu: second source is not a GPU texture: %T", params.Source2)
		}
	}

	uniformBuf, err := b.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "acrylic_blit_uniform",
		Size:  blitUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}
	defer b.dev.device.DestroyBuffer(uniformBuf)
	b.dev.queue.WriteBuffer(uniformBuf, 0, makeBlitUniform(params))

	bindGroup, err := b.dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "acrylic_blit_bind",
		Layout: b.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: blitUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: srcTex.view.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: b.sampler.NativeHandle(),
			}},
			{Binding: 3, Resource: gputypes.TextureViewBinding{
				TextureView: src2Tex.view.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group: %w", err)
	}
	defer b.dev.device.DestroyBindGroup(bindGroup)

	encoder, err := b.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "acrylic_blit_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("acrylic_blit"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "acrylic_blit_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       dstTex.view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	})
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	return b.dev.submit(encoder)
}

// Destroy releases all pipeline resources in reverse creation order.
func (b *Blitter) Destroy() {
	if b.dev == nil || b.dev.device == nil {
		return
	}
	for pass, p := range b.pipelines {
		if p != nil {
			b.dev.device.DestroyRenderPipeline(p)
		}
		delete(b.pipelines, pass)
	}
	if b.sampler != nil {
		b.dev.device.DestroySampler(b.sampler)
		b.sampler = nil
	}
	if b.pipeLayout != nil {
		b.dev.device.DestroyPipelineLayout(b.pipeLayout)
		b.pipeLayout = nil
	}
	if b.bindLayout != nil {
		b.dev.device.DestroyBindGroupLayout(b.bindLayout)
		b.bindLayout = nil
	}
	if b.shader != nil {
		b.dev.device.DestroyShaderModule(b.shader)
		b.shader = nil
	}
}

// makeBlitUniform packs BlitParams into the Params uniform layout.
func makeBlitUniform(params render.BlitParams) []byte {
	buf := make([]byte, blitUniformSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(params.Offset.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(params.Offset.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(params.HalfPixel.X()))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(params.HalfPixel.Y()))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(params.Blend))
	// Padding bytes 20..31 remain zero.
	return buf
}

var _ render.Blitter = (*Blitter)(nil)
