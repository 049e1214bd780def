// Package imageio converts between images and [1, 3, H, W] tensors.
//
// Decoding understands PNG, JPEG and GIF from the standard library plus
// WebP, BMP and TIFF from golang.org/x/image. Encoding always writes PNG.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"
	"io"
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/born-ml/han/internal/tensor"
)

// ErrNotImage is returned when a tensor does not have the [N, 3, H, W] layout
// of an RGB batch.
var ErrNotImage = errors.New("tensor is not an RGB image batch")

// Decode reads an image and returns it as a [1, 3, H, W] tensor with
// values in [0, rgbRange], together with the format name.
func Decode[B tensor.Backend](r io.Reader, rgbRange float32, backend B) (*tensor.Tensor[float32, B], string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return ToTensor(img, rgbRange, backend), format, nil
}

// Load reads and decodes the image stored at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// DecodeFile decodes the image stored at path into a [1, 3, H, W] tensor.
func DecodeFile[B tensor.Backend](path string, rgbRange float32, backend B) (*tensor.Tensor[float32, B], error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return ToTensor(img, rgbRange, backend), nil
}

// ToTensor converts img to a [1, 3, H, W] tensor. Alpha is composited over
// black.
func ToTensor[B tensor.Backend](img image.Image, rgbRange float32, backend B) *tensor.Tensor[float32, B] {
	rgba := toRGBA(img)
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()

	t := tensor.Zeros[float32](tensor.Shape{1, 3, h, w}, backend)
	data := t.Data()
	plane := h * w
	scale := rgbRange / 255

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := rgba.RGBAAt(b.Min.X+x, b.Min.Y+y)
			i := y*w + x
			data[i] = float32(px.R) * scale
			data[plane+i] = float32(px.G) * scale
			data[2*plane+i] = float32(px.B) * scale
		}
	}
	return t
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// ToImage converts item index of a [N, 3, H, W] tensor back to an image.
// Values are scaled from [0, rgbRange], rounded and clamped to [0, 255].
func ToImage[B tensor.Backend](t *tensor.Tensor[float32, B], index int, rgbRange float32) (*image.RGBA, error) {
	s := t.Shape()
	if len(s) != 4 || s[1] != 3 {
		return nil, fmt.Errorf("%w: shape %v", ErrNotImage, s)
	}
	if index < 0 || index >= s[0] {
		return nil, fmt.Errorf("image index %d out of range for batch of %d", index, s[0])
	}

	h, w := s[2], s[3]
	plane := h * w
	data := t.Data()[index*3*plane : (index+1)*3*plane]
	scale := 255 / rgbRange

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			img.SetRGBA(x, y, color.RGBA{
				R: quantize(data[i] * scale),
				G: quantize(data[plane+i] * scale),
				B: quantize(data[2*plane+i] * scale),
				A: 255,
			})
		}
	}
	return img, nil
}

func quantize(v float32) uint8 {
	switch {
	case math.IsNaN(float64(v)) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(float64(v)))
	}
}

// Encode writes the first image of t as PNG.
func Encode[B tensor.Backend](w io.Writer, t *tensor.Tensor[float32, B], rgbRange float32) error {
	img, err := ToImage(t, 0, rgbRange)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// EncodeFile writes the first image of t to path as PNG.
func EncodeFile[B tensor.Backend](path string, t *tensor.Tensor[float32, B], rgbRange float32) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, t, rgbRange)
}

// Upscale enlarges img by an integer factor with Catmull-Rom interpolation.
// Models built without an upsampler expect inputs prepared this way.
func Upscale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
