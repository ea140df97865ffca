// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging downscales uploaded images for the admin panel. Each
// image field has a maximum width; larger images are resized with a
// Catmull-Rom filter and re-encoded, smaller ones are re-encoded at their
// original size. Images are never upscaled.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Field names an image slot of the site content.
type Field string

const (
	FieldLogo     Field = "logo"
	FieldGallery  Field = "gallery"
	FieldHero     Field = "hero"
	FieldCategory Field = "category"
	FieldProduct  Field = "product"
)

// Policy is the resize rule of one field.
type Policy struct {
	MaxWidth int // Target width in pixels
	Quality  int // JPEG quality 1-100
}

// Policies maps every field to its resize rule.
var Policies = map[Field]Policy{
	FieldLogo:     {MaxWidth: 800, Quality: 80},
	FieldGallery:  {MaxWidth: 1200, Quality: 80},
	FieldHero:     {MaxWidth: 1920, Quality: 80},
	FieldCategory: {MaxWidth: 800, Quality: 80},
	FieldProduct:  {MaxWidth: 800, Quality: 80},
}

// MaxPixels rejects images whose declared dimensions exceed this many
// pixels before decoding them.
const MaxPixels = 40_000_000

// ErrUnknownField is returned for a field without a policy.
var ErrUnknownField = errors.New("imaging: unknown image field")

// ProcessingError reports an image that could not be decoded, resized or
// encoded.
type ProcessingError struct {
	Field Field
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("imaging: process %s image: %v", e.Field, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// ProcessedImage holds one encoded image ready to be stored.
type ProcessedImage struct {
	Width       int    // Actual output width
	Height      int    // Actual output height
	Data        []byte // Encoded image bytes
	ContentType string // "image/png" or "image/jpeg"
}

// Ext returns the file extension matching ContentType.
func (p *ProcessedImage) Ext() string {
	if p.ContentType == "image/png" {
		return ".png"
	}
	return ".jpg"
}

// DataURL returns the image as a base64 data URL.
func (p *ProcessedImage) DataURL() string {
	return "data:" + p.ContentType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// PolicyFor returns the policy of field.
func PolicyFor(field Field) (Policy, error) {
	p, ok := Policies[field]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return p, nil
}

// Process applies the policy of field to original. PNG input stays PNG so
// transparency survives; every other format becomes JPEG.
func Process(field Field, original []byte) (*ProcessedImage, error) {
	policy, err := PolicyFor(field)
	if err != nil {
		return nil, err
	}
	img, err := Resize(original, policy)
	if err != nil {
		return nil, &ProcessingError{Field: field, Err: err}
	}
	return img, nil
}

// Resize decodes original, scales it down to policy.MaxWidth keeping the
// aspect ratio, and re-encodes it.
func Resize(original []byte, policy Policy) (*ProcessedImage, error) {
	// Probe dimensions without fully decoding.
	cfg, format, err := image.DecodeConfig(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("probe failed: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}

	dst := scaleDown(src, policy.MaxWidth)
	b := dst.Bounds()

	var buf bytes.Buffer
	contentType := "image/jpeg"
	if format == "png" {
		contentType = "image/png"
		err = png.Encode(&buf, dst)
	} else {
		err = jpeg.Encode(&buf, flatten(dst), &jpeg.Options{Quality: policy.Quality})
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", contentType, err)
	}

	return &ProcessedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		Data:        buf.Bytes(),
		ContentType: contentType,
	}, nil
}

// scaleDown returns src resized to maxWidth, or src itself when it is
// already narrow enough.
func scaleDown(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return src
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// flatten composites img over white, since JPEG has no alpha channel.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
