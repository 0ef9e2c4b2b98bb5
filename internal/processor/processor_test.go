package processor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cip/internal/resolver"
)

func collect(updates chan ProgressUpdate) func() []ProgressUpdate {
	var got []ProgressUpdate
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range updates {
			got = append(got, u)
		}
	}()
	return func() []ProgressUpdate {
		close(updates)
		<-done
		return got
	}
}

func TestRunMixedPathSpec(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "/lib/album1/a.png", noise(8, 8, 1))
	writeJPEG(t, fs, "/lib/album1/b.jpg", noise(8, 8, 2), 90)
	writePNG(t, fs, "/lib/album1/day1/c.png", noise(8, 8, 3))
	writePNG(t, fs, "/lib/album1/day1/deep/d.png", noise(8, 8, 4))
	writePNG(t, fs, "/lib/album2/img.png", noise(8, 8, 5))
	writePNG(t, fs, "/lib/album2/other.png", noise(8, 8, 6))

	cfg := testConfig()
	cfg.Convert, cfg.Erase = true, true
	cfg.Depth = 1

	set, err := resolver.Resolve(fs, "/lib/album1*/lib/album2/img.png", cfg.Depth)
	require.NoError(t, err)

	updates := make(chan ProgressUpdate)
	wait := collect(updates)
	summary, err := newProcessor(fs, cfg).Run(context.Background(), set, updates)
	got := wait()
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Directories)
	assert.Equal(t, 4, summary.Files)
	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Positive(t, summary.BytesBefore)
	assert.Positive(t, summary.BytesAfter)

	for _, path := range []string{"/lib/album1/a.jpg", "/lib/album1/b.jpg", "/lib/album1/day1/c.jpg", "/lib/album2/img.jpg"} {
		exists, _ := afero.Exists(fs, path)
		assert.True(t, exists, path)
	}
	for _, path := range []string{"/lib/album1/a.png", "/lib/album1/day1/c.png", "/lib/album2/img.png"} {
		exists, _ := afero.Exists(fs, path)
		assert.False(t, exists, path)
	}
	for _, path := range []string{"/lib/album1/day1/deep/d.png", "/lib/album2/other.png"} {
		exists, _ := afero.Exists(fs, path)
		assert.True(t, exists, "outside the resolved set: "+path)
	}

	total, processed := 0, 0
	var lines []string
	for _, u := range got {
		total += u.TotalDelta
		processed += u.ProcessedDelta
		if u.Line != "" {
			lines = append(lines, u.Line)
		}
	}
	assert.Equal(t, 4, total)
	assert.Equal(t, 4, processed)
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[3], "/lib/album2 img.png : 00:00:"), lines[3])
}

func TestRunStopsAtFirstError(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeJPEG(t, fs, "/lib/a.jpg", noise(8, 8, 1), 100)
	require.NoError(t, afero.WriteFile(fs, "/lib/b.jpg", []byte("broken"), 0o644))
	writeJPEG(t, fs, "/lib/c.jpg", noise(8, 8, 3), 100)
	before := readAll(t, fs, "/lib/c.jpg")

	cfg := testConfig()
	cfg.Compress = true

	summary, err := newProcessor(fs, cfg).Run(context.Background(), resolver.PathSet{Directories: []string{"/lib"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/lib/b.jpg")
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, before, readAll(t, fs, "/lib/c.jpg"))
}

func TestRunMissingExplicitFile(t *testing.T) {
	cfg := testConfig()

	_, err := newProcessor(afero.NewMemMapFs(), cfg).Run(context.Background(), resolver.PathSet{Files: []string{"/lib/none.png"}}, nil)
	assert.Error(t, err)
}

func TestRunHonoursCancellation(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeJPEG(t, fs, "/lib/a.jpg", noise(8, 8, 1), 90)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newProcessor(fs, testConfig()).Run(ctx, resolver.PathSet{Directories: []string{"/lib"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Files)
}

func TestRunCountsSkipped(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/lib/logo.svg", []byte("<svg/>"), 0o644))
	writeJPEG(t, fs, "/lib/a.jpg", noise(8, 8, 1), 90)

	summary, err := newProcessor(fs, testConfig()).Run(context.Background(), resolver.PathSet{Directories: []string{"/lib"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
}

func TestFormatLine(t *testing.T) {
	res := Result{Dir: "album", Name: "a.jpg", OldSize: 2048, NewSize: 1024, Elapsed: 3*time.Hour + 2*time.Minute + 1500*time.Millisecond}
	assert.Equal(t, "album a.jpg : 03:02:01 2048 1024", FormatLine(res))

	res = Result{Dir: "album", Name: "x.svg", Skipped: true}
	assert.Equal(t, "album x.svg : skipped (unknown)", FormatLine(res))
}
