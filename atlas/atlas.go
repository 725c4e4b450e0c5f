// Package atlas packs signed-distance-field glyph tiles into a single
// four-channel texture, evicting the least-recently-used glyph when full.
package atlas

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Icemic/huozi/glyph"
	"github.com/Icemic/huozi/internal/logging"
	"github.com/Icemic/huozi/sdf"
)

// Glyph is a cached, atlas-resident glyph: its metrics plus the texture
// coordinates of its SDF tile.
type Glyph struct {
	Char    rune
	Metrics glyph.Metrics

	Page  int
	Index int

	UMin, VMin float32
	UMax, VMax float32
	GridCount  int

	slot int
}

// Config bundles the tuning constants an Atlas is built from; huozi's
// root package supplies its compile-time constants here so the package
// stays independent of the facade.
type Config struct {
	GridSize    int
	TextureSize int
	Buffer      int
	Radius      float64
	Cutoff      float64
}

// Atlas packs SDF glyph tiles from extractor into a TextureSize x
// TextureSize RGBA texture, four independent channel "pages" of
// (TextureSize/GridSize)^2 cells each.
type Atlas struct {
	cfg       Config
	extractor glyph.Extractor
	generator *sdf.Generator

	cache         *lru.Cache[rune, Glyph]
	capacity      int
	nextSlot      int
	slotsPerPage  int
	cellsPerPage  int
	cellPixelSize int

	image        *image.RGBA
	imageVersion atomic.Uint64
}

// New builds an Atlas that rasterizes missing glyphs through extractor.
func New(cfg Config, extractor glyph.Extractor) (*Atlas, error) {
	cellsPerPage := cfg.TextureSize / cfg.GridSize
	slotsPerPage := cellsPerPage * cellsPerPage
	capacity := slotsPerPage * 4

	cache, err := lru.New[rune, Glyph](capacity)
	if err != nil {
		return nil, fmt.Errorf("atlas: failed to build cache: %w", err)
	}

	return &Atlas{
		cfg:           cfg,
		extractor:     extractor,
		generator:     sdf.NewGenerator(cfg.GridSize, cfg.Buffer, cfg.Radius, cfg.Cutoff),
		cache:         cache,
		capacity:      capacity,
		slotsPerPage:  slotsPerPage,
		cellsPerPage:  cellsPerPage,
		cellPixelSize: cfg.GridSize,
		image:         image.NewRGBA(image.Rect(0, 0, cfg.TextureSize, cfg.TextureSize)),
	}, nil
}

// GetGlyph returns ch's atlas entry, rasterizing and inserting it on a
// cache miss. The returned value is a snapshot; it must not be retained
// across a later GetGlyph call, since eviction can reassign its slot.
func (a *Atlas) GetGlyph(ch rune) Glyph {
	if g, ok := a.cache.Get(ch); ok {
		return g
	}

	if !a.extractor.Exist(ch) {
		logging.Get().Warn("character has no glyph in the font, using .notdef", "char", string(ch))
	}

	bitmap, metrics, err := a.extractor.GetBitmapAndMetrics(ch)
	if err != nil {
		logging.Get().Warn("failed to rasterize character, using .notdef", "char", string(ch), "error", err)
		bitmap = make([]byte, 1)
		metrics = glyph.Metrics{Width: 1, Height: 1}
	}

	sdfBytes, w, h := a.generator.Calculate(bitmap, metrics.Width, metrics.Height)

	slot := a.allocateSlot()
	page := slot / a.slotsPerPage
	index := slot % a.slotsPerPage

	a.writeTile(page, index, sdfBytes, w, h)
	a.imageVersion.Add(1)

	uMin, vMin, uMax, vMax := a.cellUV(index)

	g := Glyph{
		Char:      ch,
		Metrics:   metrics,
		Page:      page,
		Index:     index,
		UMin:      uMin,
		VMin:      vMin,
		UMax:      uMax,
		VMax:      vMax,
		GridCount: 1,
		slot:      slot,
	}
	a.cache.Add(ch, g)
	return g
}

// allocateSlot returns a free slot index, evicting the least-recently-used
// glyph if the atlas is already at capacity.
func (a *Atlas) allocateSlot() int {
	if a.cache.Len() >= a.capacity {
		_, evicted, ok := a.cache.RemoveOldest()
		if ok {
			return evicted.slot
		}
	}
	slot := a.nextSlot
	a.nextSlot++
	return slot
}

func (a *Atlas) cellUV(index int) (uMin, vMin, uMax, vMax float32) {
	col := index % a.cellsPerPage
	row := index / a.cellsPerPage
	cellFrac := float32(a.cfg.GridSize) / float32(a.cfg.TextureSize)
	uMin = float32(col) * cellFrac
	vMin = float32(row) * cellFrac
	return uMin, vMin, uMin + cellFrac, vMin + cellFrac
}

// writeTile blits an SDF tile into the given page's color channel,
// centered in its cell with symmetric padding and clipped to the cell
// bounds.
func (a *Atlas) writeTile(page, index int, tile []byte, tileW, tileH int) {
	col := index % a.cellsPerPage
	row := index / a.cellsPerPage
	cellX := col * a.cfg.GridSize
	cellY := row * a.cfg.GridSize

	padX := (a.cfg.GridSize - tileW) / 2
	padY := (a.cfg.GridSize - tileH) / 2
	if padX < 0 {
		padX = 0
	}
	if padY < 0 {
		padY = 0
	}

	for y := 0; y < tileH && y+padY < a.cfg.GridSize; y++ {
		for x := 0; x < tileW && x+padX < a.cfg.GridSize; x++ {
			v := tile[y*tileW+x]
			px := cellX + padX + x
			py := cellY + padY + y
			a.setChannel(px, py, page, v)
		}
	}
}

func (a *Atlas) setChannel(x, y, page int, v byte) {
	i := a.image.PixOffset(x, y)
	a.image.Pix[i+page] = v
}

// Preload rasterizes every rune in charset, up to a hard cap of maxChars;
// runes beyond the cap are skipped with a warning.
func (a *Atlas) Preload(charset string, maxChars int) {
	n := 0
	for _, ch := range charset {
		if n >= maxChars {
			logging.Get().Warn("preload charset exceeds the per-call limit, truncating", "limit", maxChars)
			return
		}
		a.GetGlyph(ch)
		n++
	}
}

// TextureImage returns the atlas's backing RGBA texture. Callers must not
// mutate it; it is owned by the Atlas and changes on every cache miss.
func (a *Atlas) TextureImage() *image.RGBA {
	return a.image
}

// ImageVersion returns a counter strictly increasing on every atlas write,
// so callers can tell when to re-upload the texture.
func (a *Atlas) ImageVersion() uint64 {
	return a.imageVersion.Load()
}

// DumpTextureTo writes the current atlas texture to path as a PNG.
func (a *Atlas) DumpTextureTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("atlas: failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, a.image); err != nil {
		return fmt.Errorf("atlas: failed to encode PNG: %w", err)
	}
	return nil
}
