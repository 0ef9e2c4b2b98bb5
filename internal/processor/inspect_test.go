package processor

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cip/internal/resolver"
	"cip/pkg/imgutil"
)

func TestInspectDoesNotModify(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeJPEGWithExif(t, fs, "/lib/trip/a.jpg")
	writePNG(t, fs, "/lib/trip/b.png", noise(12, 9, 2))
	writePNG(t, fs, "/lib/trip/mislabelled.jpg", noise(4, 4, 3))
	require.NoError(t, afero.WriteFile(fs, "/lib/trip/c.svg", []byte("<svg/>"), 0o644))

	beforeA := readAll(t, fs, "/lib/trip/a.jpg")
	beforeB := readAll(t, fs, "/lib/trip/b.png")

	cfg := testConfig()
	cfg.Resize, cfg.Convert, cfg.Erase, cfg.Update = true, true, true, true

	plans, err := newProcessor(fs, cfg).Inspect(resolver.PathSet{Directories: []string{"/lib/trip"}})
	require.NoError(t, err)
	require.Len(t, plans, 4)

	byName := map[string]Plan{}
	for _, plan := range plans {
		byName[plan.Name] = plan
	}

	a := byName["a.jpg"]
	require.NoError(t, a.Err)
	assert.Equal(t, imgutil.KindJPEG, a.Kind)
	assert.Equal(t, imgutil.KindJPEG, a.Content)
	assert.Equal(t, 8, a.Width)
	assert.False(t, a.Eligible)
	assert.Equal(t, []Action{ActionRename}, a.Actions)
	assert.Equal(t, "TestCam", a.Camera)
	assert.Equal(t, "2024:01:02 03:04:05", a.Taken)

	b := byName["b.png"]
	require.NoError(t, b.Err)
	assert.Equal(t, []Action{ActionConvert, ActionErase, ActionRename}, b.Actions)
	assert.Equal(t, 12, b.Width)
	assert.Equal(t, 9, b.Height)

	m := byName["mislabelled.jpg"]
	assert.Equal(t, imgutil.KindJPEG, m.Kind)
	assert.Equal(t, imgutil.KindPNG, m.Content)

	svg := byName["c.svg"]
	assert.Equal(t, imgutil.KindUnknown, svg.Kind)
	assert.Empty(t, svg.Actions)

	assert.Equal(t, beforeA, readAll(t, fs, "/lib/trip/a.jpg"))
	assert.Equal(t, beforeB, readAll(t, fs, "/lib/trip/b.png"))
}

func TestInspectRecordsUnreadableFiles(t *testing.T) {
	plans, err := newProcessor(afero.NewMemMapFs(), testConfig()).Inspect(resolver.PathSet{Files: []string{"/lib/gone.png"}})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Error(t, plans[0].Err)
}
