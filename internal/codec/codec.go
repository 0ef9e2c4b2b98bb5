// Package codec decodes, halves and re-encodes JPEG and PNG images.
package codec

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/nfnt/resize"

	"cip/pkg/imgutil"
)

// Codec is the image codec used by the processor.
type Codec interface {
	// DecodeConfig reads the dimensions of an image without decoding pixels.
	DecodeConfig(r io.Reader) (image.Config, imgutil.Kind, error)
	// Decode reads a full image.
	Decode(r io.Reader) (image.Image, imgutil.Kind, error)
	// Halve scales both dimensions down by two.
	Halve(img image.Image) image.Image
	// Encode writes img as kind. Quality only applies to JPEG.
	Encode(w io.Writer, img image.Image, kind imgutil.Kind, quality int) error
}

// EncoderFn writes an image in one format.
type EncoderFn func(out io.Writer, img image.Image, quality int) error

// Standard is the Codec backed by image/jpeg, image/png and Lanczos resampling.
type Standard struct {
	encoders map[imgutil.Kind]EncoderFn
}

// New returns the standard codec.
func New() *Standard {
	return &Standard{
		encoders: map[imgutil.Kind]EncoderFn{
			imgutil.KindJPEG: encodeJpeg,
			imgutil.KindPNG:  encodePng,
		},
	}
}

func (s *Standard) DecodeConfig(r io.Reader) (image.Config, imgutil.Kind, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return image.Config{}, imgutil.KindUnknown, err
	}
	return cfg, kindOf(format), nil
}

func (s *Standard) Decode(r io.Reader) (image.Image, imgutil.Kind, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, imgutil.KindUnknown, err
	}
	return img, kindOf(format), nil
}

// Halve floor-halves width and height with Lanczos3, never going below one pixel.
func (s *Standard) Halve(img image.Image) image.Image {
	size := img.Bounds().Size()
	width := max(size.X/2, 1)
	height := max(size.Y/2, 1)
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
}

func (s *Standard) Encode(w io.Writer, img image.Image, kind imgutil.Kind, quality int) error {
	encoder, ok := s.encoders[kind]
	if !ok {
		return fmt.Errorf("no encoder for %s", kind)
	}
	return encoder(w, img, quality)
}

// FlattenRGB drops the alpha channel, keeping the stored colour of every pixel.
func FlattenRGB(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		draw.Draw(out, bounds, img, bounds.Min, draw.Src)
		return out
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return out
}

func encodeJpeg(out io.Writer, img image.Image, quality int) error {
	options := jpeg.Options{
		Quality: quality,
	}
	return jpeg.Encode(out, img, &options)
}

func encodePng(out io.Writer, img image.Image, _ int) error {
	return png.Encode(out, img)
}

func kindOf(format string) imgutil.Kind {
	switch format {
	case "jpeg":
		return imgutil.KindJPEG
	case "png":
		return imgutil.KindPNG
	default:
		return imgutil.KindUnknown
	}
}
