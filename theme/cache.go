package theme

import (
	"image"

	"github.com/jesedit/gutter/draw"
)

// Cache hands out 1x1 replicated tiles for colours, allocating each
// colour once. The tiles belong to the display of the first request.
type Cache struct {
	tiles map[draw.Color]draw.Image
}

// Tile returns the tile for c on d.
func (c *Cache) Tile(d draw.Display, col draw.Color) (draw.Image, error) {
	if img, ok := c.tiles[col]; ok {
		return img, nil
	}
	pix := draw.RGBA32
	img, err := d.AllocImage(image.Rect(0, 0, 1, 1), pix, true, col)
	if err != nil {
		return nil, err
	}
	if c.tiles == nil {
		c.tiles = make(map[draw.Color]draw.Image)
	}
	c.tiles[col] = img
	return img, nil
}

// Free releases every tile.
func (c *Cache) Free() {
	for _, img := range c.tiles {
		img.Free()
	}
	c.tiles = nil
}
