// Package render draws widget payloads as PNG images using fogleman/gg.
package render

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/png"
	"math"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fogleman/gg"
	lru "github.com/hashicorp/golang-lru/v2"

	domainwidgets "github.com/preston-bernstein/contrib-widget-service/internal/domain/widgets"
	"github.com/preston-bernstein/contrib-widget-service/internal/metrics"
)

const (
	rowsPerColumn   = 7
	defaultSpacing  = 0.1
	defaultRadius   = 2
	defaultCache    = 256
	formatPNG       = "png"
	minCellGapPixel = 1
)

// Config contains renderer configuration.
type Config struct {
	// Background is a #RRGGBB fill; empty leaves the canvas transparent.
	Background string
	// Spacing is the gap between cells as a fraction of the cell size.
	Spacing float64
	// Radius rounds cell corners, in pixels.
	Radius float64
	// CacheSize bounds the encoded images kept in memory. Negative disables caching.
	CacheSize int
}

// Renderer turns widget payloads into PNG images, one cell per day laid out in columns of seven.
type Renderer struct {
	config     Config
	cache      *lru.Cache[string, []byte]
	bufferPool sync.Pool
	metrics    *metrics.Recorder
}

// NewRenderer creates a renderer and its image cache.
func NewRenderer(cfg Config, recorder *metrics.Recorder) (*Renderer, error) {
	if cfg.Spacing <= 0 {
		cfg.Spacing = defaultSpacing
	}
	if cfg.Radius < 0 {
		cfg.Radius = 0
	} else if cfg.Radius == 0 {
		cfg.Radius = defaultRadius
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = defaultCache
	}
	r := &Renderer{
		config:  cfg,
		metrics: recorder,
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 8*1024))
			},
		},
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []byte](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create image cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// Geometry reports the pixel dimensions of a rendered payload.
func (r *Renderer) Geometry(data domainwidgets.Data) (width, height int) {
	cell, gap := r.cellPixels(data.Config.CellSize)
	cols := (len(data.Cells) + rowsPerColumn - 1) / rowsPerColumn
	rows := rowsPerColumn
	if len(data.Cells) < rowsPerColumn {
		rows = len(data.Cells)
	}
	if cols == 0 {
		return gap, gap
	}
	return cols*(cell+gap) + gap, rows*(cell+gap) + gap
}

// PNG renders data, serving repeated payloads from the cache.
func (r *Renderer) PNG(data domainwidgets.Data) ([]byte, error) {
	start := time.Now()
	key := cacheKey(data)
	if r.cache != nil {
		if img, ok := r.cache.Get(key); ok {
			r.metrics.RecordRenderCache(true)
			r.metrics.RecordWidgetRender(string(data.Size), formatPNG, time.Since(start), nil)
			return img, nil
		}
		r.metrics.RecordRenderCache(false)
	}

	img, err := r.draw(data)
	r.metrics.RecordWidgetRender(string(data.Size), formatPNG, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Add(key, img)
	}
	return img, nil
}

// Purge drops every cached image.
func (r *Renderer) Purge() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

func (r *Renderer) draw(data domainwidgets.Data) ([]byte, error) {
	width, height := r.Geometry(data)
	dc := gg.NewContext(width, height)
	if r.config.Background != "" {
		dc.SetHexColor(r.config.Background)
		dc.Clear()
	}

	cell, gap := r.cellPixels(data.Config.CellSize)
	pitch := float64(cell + gap)
	for _, c := range data.Cells {
		col, row := c.Index/rowsPerColumn, c.Index%rowsPerColumn
		x := float64(gap) + float64(col)*pitch
		y := float64(gap) + float64(row)*pitch
		dc.SetHexColor(c.Color)
		dc.DrawRoundedRectangle(x, y, float64(cell), float64(cell), r.config.Radius)
		dc.Fill()
	}
	return r.encodeContext(dc)
}

func (r *Renderer) cellPixels(size int) (cell, gap int) {
	if size <= 0 {
		size = 1
	}
	gap = int(math.Round(float64(size) * r.config.Spacing))
	if gap < minCellGapPixel {
		gap = minCellGapPixel
	}
	return size, gap
}

func (r *Renderer) encodeContext(dc *gg.Context) ([]byte, error) {
	buf := r.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		r.bufferPool.Put(buf)
	}()

	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(buf, dc.Image()); err != nil {
		return nil, err
	}

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// cacheKey identifies a payload by login, size, date and the colors it paints.
func cacheKey(data domainwidgets.Data) string {
	h := xxhash.New()
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(data.Config.CellSize))
	_, _ = h.Write(n[:])
	for _, c := range data.Cells {
		_, _ = h.WriteString(c.Color)
	}
	return fmt.Sprintf("%s:%s:%s:%016x", data.Login, data.Size, data.Date, h.Sum64())
}
