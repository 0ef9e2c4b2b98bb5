package imgutil

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

// Kind identifies a supported image type.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	default:
		return "unknown"
	}
}

// Ext returns the file extension written for the kind.
func (k Kind) Ext() string {
	switch k {
	case KindJPEG:
		return ".jpg"
	case KindPNG:
		return ".png"
	default:
		return ""
	}
}

var (
	pngSig  = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig = []byte{0xff, 0xd8, 0xff}
)

// KindFromName classifies a file by its case-sensitive suffix.
// Only ".jpg" and ".png" are recognized; "IMG.JPG" and "a.jpeg" are unknown.
func KindFromName(name string) Kind {
	switch {
	case strings.HasSuffix(name, ".jpg"):
		return KindJPEG
	case strings.HasSuffix(name, ".png"):
		return KindPNG
	default:
		return KindUnknown
	}
}

// DetectHeader inspects the first 8 bytes of a file for known signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < 8 {
		return KindUnknown, errors.New("header too short")
	}

	if bytes.HasPrefix(header, jpegSig) {
		return KindJPEG, nil
	}
	if bytes.HasPrefix(header, pngSig) {
		return KindPNG, nil
	}

	return KindUnknown, nil
}

// SniffReader reads the first 8 bytes from r and determines its type.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return KindUnknown, err
	}

	return DetectHeader(header)
}
