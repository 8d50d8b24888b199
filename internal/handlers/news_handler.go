package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/services"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// Layouts accepted for start_date and end_date. Values without an offset
// are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(raw, name string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, name+" must be an ISO 8601 date")
}

func onlyActive(c *fiber.Ctx) (bool, error) {
	raw := c.Query("only_active")
	if raw == "" {
		return true, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fiber.NewError(fiber.StatusBadRequest, "only_active must be true or false")
	}
	return v, nil
}

type NewsHandler struct {
	news    *services.NewsService
	present presenter
	uploader
}

func NewNewsHandler(news *services.NewsService, st storage.Storage, maxFiles int) *NewsHandler {
	return &NewsHandler{
		news:     news,
		present:  presenter{storage: st},
		uploader: uploader{storage: st, maxFiles: maxFiles},
	}
}

func newsID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, services.ErrNewsNotFound
	}
	return uint(id), nil
}

// input reads the multipart form. Description is left nil when the field
// is absent so updates keep the stored text.
func (h *NewsHandler) input(c *fiber.Ctx) (services.NewsInput, error) {
	in := services.NewsInput{Title: cleanText(c.FormValue("title"))}
	if form, err := c.MultipartForm(); err == nil {
		if v, ok := form.Value["description"]; ok && len(v) > 0 {
			d := cleanText(v[0])
			in.Description = &d
		}
	} else if v := c.FormValue("description"); v != "" {
		d := cleanText(v)
		in.Description = &d
	}
	var err error
	if in.StartsAt, err = parseDate(c.FormValue("start_date"), "start_date"); err != nil {
		return in, err
	}
	if in.EndsAt, err = parseDate(c.FormValue("end_date"), "end_date"); err != nil {
		return in, err
	}
	return in, nil
}

func (h *NewsHandler) List(c *fiber.Ctx) error {
	active, err := onlyActive(c)
	if err != nil {
		return requestError(c, err)
	}
	items, err := h.news.List(c.UserContext(), active)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.NewsResponse, 0, len(items))
	for i := range items {
		out = append(out, h.present.news(c.UserContext(), &items[i]))
	}
	return c.JSON(out)
}

func (h *NewsHandler) Get(c *fiber.Ctx) error {
	id, err := newsID(c)
	if err != nil {
		return respondError(c, err)
	}
	active, err := onlyActive(c)
	if err != nil {
		return requestError(c, err)
	}
	item, err := h.news.Get(c.UserContext(), id, active)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.present.news(c.UserContext(), item))
}

func (h *NewsHandler) Create(c *fiber.Ctx) error {
	in, err := h.input(c)
	if err != nil {
		return requestError(c, err)
	}
	stored, media, err := h.upload(c, "files", "news/")
	if err != nil {
		return requestError(c, err)
	}
	in.Media = media

	item, err := h.news.Create(c.UserContext(), in)
	if err != nil {
		h.discard(c.UserContext(), stored)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.present.news(c.UserContext(), item))
}

// Update replaces title and publication window, replaces the description
// when sent and appends any uploaded files.
func (h *NewsHandler) Update(c *fiber.Ctx) error {
	id, err := newsID(c)
	if err != nil {
		return respondError(c, err)
	}
	in, err := h.input(c)
	if err != nil {
		return requestError(c, err)
	}
	stored, media, err := h.upload(c, "files", "news/"+strconv.FormatUint(uint64(id), 10)+"/")
	if err != nil {
		return requestError(c, err)
	}
	in.Media = media

	item, err := h.news.Update(c.UserContext(), id, in)
	if err != nil {
		h.discard(c.UserContext(), stored)
		return respondError(c, err)
	}
	return c.JSON(h.present.news(c.UserContext(), item))
}

func (h *NewsHandler) Delete(c *fiber.Ctx) error {
	id, err := newsID(c)
	if err != nil {
		return respondError(c, err)
	}
	removed, err := h.news.Delete(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	keys := make([]string, 0, len(removed.Media))
	for _, m := range removed.Media {
		keys = append(keys, m.StorageKey)
	}
	storage.DiscardKeys(context.WithoutCancel(c.UserContext()), h.storage, keys)
	return c.JSON(dto.MessageResponse{Message: "News item deleted"})
}
