package frustum

import (
	"log/slog"

	"github.com/chazu/facet/pkg/clip"
	"github.com/chazu/facet/pkg/polyface"
)

// ComputeFrustumOverlap returns the fraction of this frustum's volume that
// lies inside test, in [0, 1]. The ratio is measured against this
// frustum, so it is not symmetric. Degenerate input yields 0 with a
// logged warning.
func ComputeFrustumOverlap(this, test Frustum) float64 {
	log := polyface.Logger()
	volume := this.Volume()
	if volume <= 0 {
		log.Warn("frustum overlap: frustum has no volume")
		return 0
	}

	opts := clip.DefaultOptions()
	acc, err := clip.NewFrustumPolyfaceClipper(opts.Tolerances)
	if err != nil {
		log.Warn("frustum overlap", slog.Any("error", err))
		return 0
	}
	outcome, err := clip.ClipPolyface(this.Mesh(), clip.ClipPlaneSet{test.Planes()}, acc, opts)
	if err != nil {
		log.Warn("frustum overlap: clip", slog.Any("error", err))
		return 0
	}
	switch outcome {
	case clip.TrivialReject:
		return 0
	case clip.TrivialAccept:
		return 1
	}

	// Faces of test lying on this frustum's planes duplicate faces the
	// first pass already kept.
	acc.KeepUnclipped = true
	opts.ExcludeOnPlane = true
	if _, err := clip.ClipPolyface(test.Mesh(), clip.ClipPlaneSet{this.Planes()}, acc, opts); err != nil {
		log.Warn("frustum overlap: reverse clip", slog.Any("error", err))
		return 0
	}

	sum := acc.Mesh().SumTetrahedralVolumes(this[0])
	if sum < 0 {
		log.Warn("frustum overlap: negative intersection volume", slog.Float64("volume", sum))
		return 0
	}
	ratio := sum / volume
	log.Debug("frustum overlap",
		slog.Float64("intersection", sum),
		slog.Float64("volume", volume),
		slog.Int("faces", acc.Mesh().FaceCount()))
	if ratio > 1 {
		return 1
	}
	return ratio
}
