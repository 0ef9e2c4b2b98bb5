package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var jpegExifHeader = []byte("Exif\x00\x00")

var errNotJPEG = errors.New("invalid JPEG SOI")

// ExtractExif returns the first APP1 Exif segment of a JPEG stream, marker
// and length included. It returns nil when the image carries no EXIF.
func ExtractExif(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)

	soi := make([]byte, 2)
	if _, err := io.ReadFull(br, soi); err != nil {
		return nil, err
	}
	if soi[0] != 0xff || soi[1] != 0xd8 {
		return nil, errNotJPEG
	}

	for {
		markerPrefix, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		for markerPrefix != 0xff {
			markerPrefix, err = br.ReadByte()
			if err != nil {
				return nil, err
			}
		}

		marker, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		for marker == 0xff {
			marker, err = br.ReadByte()
			if err != nil {
				return nil, err
			}
		}

		// Metadata never follows the first scan.
		if marker == 0xd9 || marker == 0xda {
			return nil, nil
		}
		if marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7) {
			continue
		}

		lenBuf := make([]byte, 2)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			return nil, err
		}
		segLen := int(binary.BigEndian.Uint16(lenBuf))
		if segLen < 2 {
			return nil, fmt.Errorf("invalid JPEG segment length")
		}
		payloadLen := segLen - 2

		if marker != 0xe1 {
			if _, err := io.CopyN(io.Discard, br, int64(payloadLen)); err != nil {
				return nil, err
			}
			continue
		}

		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(br, payload); err != nil {
			return nil, err
		}
		if !bytes.HasPrefix(payload, jpegExifHeader) {
			continue
		}

		segment := make([]byte, 0, 4+payloadLen)
		segment = append(segment, 0xff, marker)
		segment = append(segment, lenBuf...)
		segment = append(segment, payload...)
		return segment, nil
	}
}

// InjectSegment inserts a complete JPEG segment right after the SOI marker.
func InjectSegment(data, segment []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		return nil, errNotJPEG
	}
	if len(segment) == 0 {
		return data, nil
	}

	out := make([]byte, 0, len(data)+len(segment))
	out = append(out, data[:2]...)
	out = append(out, segment...)
	out = append(out, data[2:]...)
	return out, nil
}
