package processor

import (
	"errors"
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// CaptureInfo holds the EXIF fields reported by Inspect.
type CaptureInfo struct {
	Camera string
	Taken  string
}

// readCaptureInfo locates the EXIF block of an image and reads the camera
// model and capture time from it. Images without EXIF yield an empty result.
func readCaptureInfo(r io.Reader) (CaptureInfo, error) {
	info := CaptureInfo{}

	raw, err := exif.SearchAndExtractExifWithReader(r)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return info, nil
		}
		return info, err
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return info, err
	}

	for _, tag := range tags {
		value := strings.TrimSpace(strings.TrimRight(tag.Formatted, "\x00"))
		switch tag.TagName {
		case "Model":
			if info.Camera == "" {
				info.Camera = value
			}
		case "DateTimeOriginal":
			info.Taken = value
		case "DateTime":
			if info.Taken == "" {
				info.Taken = value
			}
		}
	}

	return info, nil
}
