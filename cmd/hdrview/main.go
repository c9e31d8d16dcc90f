package main

import (
	"bufio"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pierrec/lz4/v4"

	"radhdr/libhdr"
	"radhdr/libio"
)

//go:embed shaders/view.vert
var Res_ViewVshSrc string

//go:embed shaders/view.frag
var Res_ViewFshSrc string

var Arguments struct {
	Gamma    float64
	Exposure float64
}

const (
	locTransformMat = 0
	locExposure     = 1
	locGamma        = 2
)

func main() {
	flag.Float64Var(&Arguments.Gamma, "gamma", 2.2, "the gamma correction exponent")
	flag.Float64Var(&Arguments.Exposure, "exposure", 1.0, "the initial exposure scale")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [arguments] <file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(1)
	}

	img, err := loadImage(flag.Arg(0))
	check(err)
	if img.Width == 0 || img.Height == 0 {
		check(fmt.Errorf("image has zero size %dx%d", img.Width, img.Height))
	}

	runtime.LockOSThread()
	err = glfw.Init()
	check(err)
	defer glfw.Terminate()

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 5)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	title := fmt.Sprintf("%s (%dx%d)", filepath.Base(flag.Arg(0)), img.Width, img.Height)
	ctx, err := glfw.CreateWindow(1280, 720, title, nil, nil)
	check(err)
	ctx.MakeContextCurrent()
	glfw.SwapInterval(1)

	err = gl.Init()
	check(err)

	shader, err := createShaderProgram(Res_ViewVshSrc, Res_ViewFshSrc)
	check(err)

	var texture uint32
	gl.CreateTextures(gl.TEXTURE_2D, 1, &texture)
	gl.TextureParameteri(texture, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TextureParameteri(texture, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TextureParameteri(texture, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TextureParameteri(texture, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TextureStorage2D(texture, 1, gl.RGB32F, int32(img.Width), int32(img.Height))
	gl.TextureSubImage2D(texture, 0, 0, 0, int32(img.Width), int32(img.Height), gl.RGB, gl.FLOAT, gl.Ptr(img.Pix))

	// core profile requires a bound vao even without buffers
	var vao uint32
	gl.CreateVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.UseProgram(shader)
	gl.BindTextureUnit(0, texture)

	exposure := float32(Arguments.Exposure)
	ctx.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press && action != glfw.Repeat {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyEqual, glfw.KeyKPAdd:
			exposure *= 1.25
		case glfw.KeyMinus, glfw.KeyKPSubtract:
			exposure /= 1.25
		}
	})

	gl.ClearColor(0.1, 0.1, 0.1, 1.0)

	for !ctx.ShouldClose() {
		w, h := ctx.GetFramebufferSize()
		if w == 0 || h == 0 {
			glfw.WaitEvents()
			continue
		}
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.Clear(gl.COLOR_BUFFER_BIT)

		transform := fitTransform(img.Width, img.Height, w, h)
		gl.UniformMatrix4fv(locTransformMat, 1, false, &transform[0])
		gl.Uniform1f(locExposure, exposure)
		gl.Uniform1f(locGamma, float32(Arguments.Gamma))

		gl.DrawArrays(gl.TRIANGLES, 0, 3)

		ctx.SwapBuffers()
		glfw.PollEvents()
	}
}

// fitTransform scales clip space so the image keeps its aspect ratio
// inside the window.
func fitTransform(imgW, imgH, winW, winH int) mgl32.Mat4 {
	imgAspect := float32(imgW) / float32(imgH)
	winAspect := float32(winW) / float32(winH)

	sx, sy := float32(1), float32(1)
	if imgAspect > winAspect {
		sy = winAspect / imgAspect
	} else {
		sx = imgAspect / winAspect
	}
	return mgl32.Scale3D(sx, sy, 1)
}

// loadImage reads a radiance hdr file, an lz4 compressed radiance hdr
// file or an f32 cache file into a 3 channel float image.
func loadImage(p string) (*libio.FloatImage, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var src io.Reader = bufio.NewReaderSize(file, 1<<16)

	switch strings.ToLower(filepath.Ext(p)) {
	case ".f32":
		img, err := libio.DecodeFloatImage(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if img.Channels != 3 {
			return nil, fmt.Errorf("%s: has %d channels, only 3 channel images can be displayed", p, img.Channels)
		}
		return img, nil
	case ".lz4":
		src = bufio.NewReaderSize(lz4.NewReader(src), 1<<16)
	}

	img, err := libhdr.Load(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return libio.NewFloatImage(img.Pix(), 3, img.Width, img.Height), nil
}

func createShaderProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var ok int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &ok)
	if ok == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))
		return 0, fmt.Errorf("failed to link shader, log: %v", infoLog)
	}

	return program, nil
}

func compileShader(source string, stage uint32) (uint32, error) {
	shader := gl.CreateShader(stage)
	cStrs, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, cStrs, nil)
	free()
	gl.CompileShader(shader)

	var ok int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &ok)
	if ok == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
		return 0, fmt.Errorf("failed to compile shader, log: %v", infoLog)
	}

	return shader, nil
}

func check(err error) {
	if err != nil {
		log.Fatalln(err)
	}
}
