package main

import (
	"github.com/jakecoffman/cp"

	"github.com/torchlab/ember/common"
)

// pixelsPerUnit converts world units to screen pixels at zoom 1.
const pixelsPerUnit = 100.0

// Camera centers the view on a follow target and eases toward a zoom
// target written by zoom triggers.
type Camera struct {
	pos        cp.Vector
	zoom       float64
	targetZoom float64

	width  int
	height int
}

func NewCamera(width, height int) *Camera {
	return &Camera{zoom: 1, targetZoom: 1, width: width, height: height}
}

func (c *Camera) Resize(width, height int) {
	c.width = width
	c.height = height
}

func (c *Camera) SetZoomTarget(z float64) {
	if z > 0 {
		c.targetZoom = z
	}
}

func (c *Camera) Zoom() float64 {
	return c.zoom
}

// Follow eases the camera toward the target position and zoom.
func (c *Camera) Follow(target cp.Vector, dt float64) {
	t := common.Clamp(8*dt, 0, 1)
	c.pos.X = common.Lerp(c.pos.X, target.X, t)
	c.pos.Y = common.Lerp(c.pos.Y, target.Y, t)
	c.zoom = common.Lerp(c.zoom, c.targetZoom, t)
}

func (c *Camera) scale() float64 {
	return pixelsPerUnit * c.zoom
}

// WorldToScreen projects a world point to window pixels. World y grows
// upward, screen y downward.
func (c *Camera) WorldToScreen(v cp.Vector) (float64, float64) {
	s := c.scale()
	x := (v.X-c.pos.X)*s + float64(c.width)/2
	y := float64(c.height)/2 - (v.Y-c.pos.Y)*s
	return x, y
}

// ScreenToWorld inverts the projection. The second result is false for
// cursor positions outside the window.
func (c *Camera) ScreenToWorld(x, y int) (cp.Vector, bool) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return cp.Vector{}, false
	}
	s := c.scale()
	return cp.Vector{
		X: (float64(x)-float64(c.width)/2)/s + c.pos.X,
		Y: (float64(c.height)/2-float64(y))/s + c.pos.Y,
	}, true
}
