package extract

import (
	"regexp"

	"datefixer/internal/dating"
)

var cameraPattern = regexp.MustCompile(`^IMG_(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`)

// Camera matches Android camera exports such as IMG_20190818_130841.jpg.
type Camera struct{}

// NewCamera returns the camera-style extractor.
func NewCamera() Camera { return Camera{} }

// Name implements Extractor.
func (Camera) Name() string { return "camera" }

// Match implements Extractor.
func (Camera) Match(_ string, name string) (dating.Guess, bool) {
	m := cameraPattern.FindStringSubmatch(name)
	if m == nil {
		return dating.Guess{}, false
	}
	f := atois(m[1:])
	g, err := dating.FromFields(f[0], f[1], f[2], f[3], f[4], f[5], dating.Second)
	if err != nil {
		return dating.Guess{}, false
	}
	return g, true
}
