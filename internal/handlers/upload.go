package handlers

import (
	"context"
	"mime/multipart"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/services"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// uploader writes multipart files to media storage for the handlers that
// accept attachments.
type uploader struct {
	storage  storage.Storage
	maxFiles int
}

func formFiles(c *fiber.Ctx, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form.File[field]
}

// upload stores the files sent under field and converts them to media
// inputs. Callers discard the stored files if the request fails later.
func (u uploader) upload(c *fiber.Ctx, field, prefix string) ([]storage.Stored, []services.MediaInput, error) {
	headers := formFiles(c, field)
	if len(headers) == 0 {
		return nil, nil, nil
	}
	if u.maxFiles > 0 && len(headers) > u.maxFiles {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest,
			"at most "+strconv.Itoa(u.maxFiles)+" files can be uploaded at once")
	}
	stored, err := storage.SaveAll(c.UserContext(), u.storage, prefix, storage.FromMultipart(headers))
	if err != nil {
		return nil, nil, err
	}
	media := make([]services.MediaInput, len(stored))
	for i, s := range stored {
		media[i] = services.MediaInput{StorageKey: s.Key, Kind: s.Kind}
	}
	return stored, media, nil
}

func (u uploader) discard(ctx context.Context, stored []storage.Stored) {
	if len(stored) > 0 {
		storage.Discard(context.WithoutCancel(ctx), u.storage, stored)
	}
}

