package processor

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"cip/internal/codec"
	"cip/internal/config"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Paths = "unused"
	return cfg
}

func newProcessor(fs afero.Fs, cfg config.Config) *Processor {
	return New(fs, codec.New(), cfg)
}

func noise(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rng.Read(img.Pix)
	return img
}

func writePNG(t *testing.T, fs afero.Fs, path string, img image.Image) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func writeJPEG(t *testing.T, fs afero.Fs, path string, img image.Image, quality int) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func writeJPEGWithExif(t *testing.T, fs afero.Fs, path string) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, codec.FlattenRGB(noise(8, 8, 7)), &jpeg.Options{Quality: 90}))

	payload := append([]byte("Exif\x00\x00"), buildExifTIFF()...)
	var seg bytes.Buffer
	seg.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&seg, binary.BigEndian, uint16(len(payload)+2))
	seg.Write(payload)

	data, err := codec.InjectSegment(buf.Bytes(), seg.Bytes())
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}

func buildExifTIFF() []byte {
	var tiff bytes.Buffer
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0110))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(38))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0132))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(20))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(46))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))
	tiff.Write([]byte("TestCam\x00"))
	tiff.Write([]byte("2024:01:02 03:04:05\x00"))
	return tiff.Bytes()
}

func dims(t *testing.T, fs afero.Fs, path string) image.Point {
	t.Helper()

	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return image.Pt(cfg.Width, cfg.Height)
}

func readAll(t *testing.T, fs afero.Fs, path string) []byte {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return data
}
