package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"cip/internal/codec"
	"cip/internal/config"
	"cip/internal/logger"
	"cip/pkg/imgutil"
)

// ResizeMinBytes is the file size a file must exceed before it is resized.
const ResizeMinBytes = 1_000_000

// Decide returns the ordered steps cfg requests for a file of the given kind.
// Resize only takes effect on eligible files; see ResizeEligible.
func Decide(kind imgutil.Kind, cfg config.Config) []Action {
	var steps []Action
	switch kind {
	case imgutil.KindJPEG:
		if cfg.Resize {
			steps = append(steps, ActionResize)
		} else if cfg.Compress {
			steps = append(steps, ActionCompress)
		}
	case imgutil.KindPNG:
		if cfg.Resize {
			steps = append(steps, ActionResize)
		}
		if cfg.Convert {
			steps = append(steps, ActionConvert)
			if cfg.Erase {
				steps = append(steps, ActionErase)
			}
		}
	case imgutil.KindUnknown:
		return nil
	}
	if cfg.Update {
		steps = append(steps, ActionRename)
	}
	return steps
}

// ResizeEligible reports whether a file of size bytes and the given
// dimensions is large enough to be halved.
func ResizeEligible(size int64, width, height, side int) bool {
	return size > ResizeMinBytes && min(width, height) > side
}

func (p *Processor) resize(path string, kind imgutil.Kind, mode os.FileMode) (bool, error) {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return false, err
	}

	cfg, _, err := p.codec.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	if !ResizeEligible(int64(len(data)), cfg.Width, cfg.Height, p.cfg.Side) {
		logger.Debug("Resize not needed", "path", path, "size", len(data), "width", cfg.Width, "height", cfg.Height)
		return false, nil
	}

	img, _, err := p.codec.Decode(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}

	out, err := p.encode(p.codec.Halve(img), kind, data)
	if err != nil {
		return false, err
	}
	return true, p.writeAtomic(path, mode, out)
}

func (p *Processor) compress(path string, mode os.FileMode) error {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return err
	}

	img, _, err := p.codec.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	out, err := p.encode(img, imgutil.KindJPEG, data)
	if err != nil {
		return err
	}
	return p.writeAtomic(path, mode, out)
}

// convert writes an RGB JPEG next to the PNG at path and returns its path.
func (p *Processor) convert(path string, mode os.FileMode) (string, error) {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return "", err
	}

	img, _, err := p.codec.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := p.codec.Encode(&buf, codec.FlattenRGB(img), imgutil.KindJPEG, p.cfg.Quality); err != nil {
		return "", err
	}

	target := strings.TrimSuffix(path, imgutil.KindPNG.Ext()) + imgutil.KindJPEG.Ext()
	if err := p.writeAtomic(target, mode, buf.Bytes()); err != nil {
		return "", err
	}
	return target, nil
}

// erase removes the original once the converted file exists.
func (p *Processor) erase(original, converted string) (bool, error) {
	if original == converted {
		return false, nil
	}
	exists, err := afero.Exists(p.fs, converted)
	if err != nil || !exists {
		return false, err
	}
	if err := p.fs.Remove(original); err != nil {
		return false, err
	}
	return true, nil
}

// rename prefixes the file at path with the name of dir and returns the new path.
func (p *Processor) rename(path, dir string) (string, error) {
	folder, err := folderName(dir)
	if err != nil {
		return "", err
	}

	target := filepath.Join(filepath.Dir(path), folder+"_"+filepath.Base(path))
	if err := p.fs.Rename(path, target); err != nil {
		return "", err
	}
	return target, nil
}

func folderName(dir string) (string, error) {
	name := filepath.Base(filepath.Clean(dir))
	if name == "." {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", err
		}
		name = filepath.Base(abs)
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", errors.New("cannot derive a folder name from " + dir)
	}
	return name, nil
}

// encode writes img as kind, carrying over the EXIF segment of src when
// configured to.
func (p *Processor) encode(img image.Image, kind imgutil.Kind, src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.codec.Encode(&buf, img, kind, p.cfg.Quality); err != nil {
		return nil, err
	}
	if kind != imgutil.KindJPEG || !p.cfg.KeepExif {
		return buf.Bytes(), nil
	}

	segment, err := codec.ExtractExif(bytes.NewReader(src))
	if err != nil {
		logger.Warn("Could not read EXIF, writing without it", "error", err)
		return buf.Bytes(), nil
	}
	return codec.InjectSegment(buf.Bytes(), segment)
}

func (p *Processor) writeAtomic(path string, mode os.FileMode, data []byte) error {
	tmpFile, err := afero.TempFile(p.fs, filepath.Dir(path), "cip-*.tmp")
	if err != nil {
		return err
	}
	defer p.fs.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := p.fs.Chmod(tmpFile.Name(), mode.Perm()); err != nil {
		return err
	}

	return p.replaceFile(tmpFile.Name(), path)
}

func (p *Processor) replaceFile(tmpPath, destPath string) error {
	if err := p.fs.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := p.fs.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return p.fs.Rename(tmpPath, destPath)
}
