package admin

import (
	"context"
	"fmt"
	"log/slog"

	"gutoautopecas/internal/imaging"
	"gutoautopecas/internal/models"
	"gutoautopecas/internal/storage"
)

// AttachImage resizes an uploaded image for field and stages its URL in
// the matching draft. With an uploader the image is stored remotely,
// otherwise it is inlined as a data URL. target is the category ID for
// imaging.FieldCategory and ignored elsewhere. Product images are not
// staged; the returned URL goes into the product being edited.
func (s *Surface) AttachImage(ctx context.Context, field imaging.Field, target string, data []byte) (string, error) {
	img, err := imaging.Process(field, data)
	if err != nil {
		return "", err
	}

	url := img.DataURL()
	if s.uploader != nil {
		key := storage.ObjectKey(string(field), img.Ext())
		url, err = s.uploader.Upload(ctx, key, img.ContentType, img.Data)
		if err != nil {
			return "", fmt.Errorf("admin: upload %s image: %w", field, err)
		}
		slog.Info("image uploaded", "field", field, "key", key, "bytes", len(img.Data))
	}

	switch field {
	case imaging.FieldLogo:
		s.update(func(d *Drafts) { d.Logo = models.Logo{URL: url} })
	case imaging.FieldHero:
		s.update(func(d *Drafts) { d.Hero.BgImage = url })
	case imaging.FieldGallery:
		s.AddGalleryImage(url)
	case imaging.FieldCategory:
		if err := s.SetCategoryImage(target, url); err != nil {
			return "", err
		}
	}
	return url, nil
}
