package processor

import (
	"bytes"
	"path/filepath"

	"github.com/spf13/afero"

	"cip/internal/resolver"
	"cip/pkg/imgutil"
)

// Inspect reports what Run would do with every file of set, without
// modifying anything. Per-file read failures are kept in Plan.Err.
func (p *Processor) Inspect(set resolver.PathSet) ([]Plan, error) {
	var plans []Plan
	for _, dir := range set.Directories {
		names, err := p.ListCandidates(dir)
		if err != nil {
			return plans, err
		}
		for _, name := range names {
			plans = append(plans, p.plan(dir, name))
		}
	}
	for _, file := range set.Files {
		plans = append(plans, p.plan(filepath.Dir(file), filepath.Base(file)))
	}
	return plans, nil
}

func (p *Processor) plan(dir, name string) Plan {
	path := filepath.Join(dir, name)
	plan := Plan{Dir: dir, Name: name, Kind: imgutil.KindFromName(name)}

	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		plan.Err = err
		return plan
	}
	plan.Size = int64(len(data))

	if kind, err := imgutil.SniffReader(bytes.NewReader(data)); err == nil {
		plan.Content = kind
	}
	if plan.Kind == imgutil.KindUnknown {
		return plan
	}

	cfg, _, err := p.codec.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		plan.Err = err
		return plan
	}
	plan.Width, plan.Height = cfg.Width, cfg.Height
	plan.Eligible = ResizeEligible(plan.Size, cfg.Width, cfg.Height, p.cfg.Side)

	for _, step := range Decide(plan.Kind, p.cfg) {
		if step == ActionResize && !plan.Eligible {
			continue
		}
		plan.Actions = append(plan.Actions, step)
	}

	if plan.Content == imgutil.KindJPEG {
		capture, err := readCaptureInfo(bytes.NewReader(data))
		if err != nil {
			plan.Err = err
			return plan
		}
		plan.Camera, plan.Taken = capture.Camera, capture.Taken
	}
	return plan
}
