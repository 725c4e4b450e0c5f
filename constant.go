package huozi

import "github.com/Icemic/huozi/internal/constants"

// Tuning constants for the glyph atlas and layout engine.
//
// The values live in internal/constants so atlas and layout can use them
// without importing this root package; they are re-exported here unchanged.
const (
	GridSize         = constants.GridSize
	FontSize         = constants.FontSize
	Buffer           = constants.Buffer
	Radius           = constants.Radius
	Cutoff           = constants.Cutoff
	TextureSize      = constants.TextureSize
	Ascent           = constants.Ascent
	SlotGridCount    = constants.SlotGridCount
	SlotsPerPage     = constants.SlotsPerPage
	GammaCoefficient = constants.GammaCoefficient
	ViewportWidth    = constants.ViewportWidth
	ViewportHeight   = constants.ViewportHeight
	MaxPreloadChars  = constants.MaxPreloadChars
)
