package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/services"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/storage"
	"github.com/gofiber/fiber/v2"
)

const defaultNearbyRadiusKm = 1.0

type ReportHandler struct {
	submissions *services.SubmissionService
	reports     *services.ReportService
	status      *services.StatusService
	proximity   *services.ProximityService
	present     presenter
	uploader
}

func NewReportHandler(
	submissions *services.SubmissionService,
	reports *services.ReportService,
	status *services.StatusService,
	proximity *services.ProximityService,
	st storage.Storage,
	maxFiles int,
) *ReportHandler {
	return &ReportHandler{
		submissions: submissions,
		reports:     reports,
		status:      status,
		proximity:   proximity,
		present:     presenter{storage: st},
		uploader:    uploader{storage: st, maxFiles: maxFiles},
	}
}

func parseCoordinate(raw, name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a number")
	}
	return v, nil
}

// requestError renders errors raised by the handler itself before falling
// back to the service error mapping.
func requestError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code == fiber.StatusBadRequest {
		return fail(c, fe.Code, "validation_error", fe.Message)
	}
	return respondError(c, err)
}

// Create accepts a citizen report as multipart form data together with
// the emailed verification code.
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	lat, err := parseCoordinate(c.FormValue("latitude"), "latitude")
	if err != nil {
		return requestError(c, err)
	}
	lng, err := parseCoordinate(c.FormValue("longitude"), "longitude")
	if err != nil {
		return requestError(c, err)
	}
	code := strings.TrimSpace(c.FormValue("otp_code"))
	if code == "" {
		return fail(c, fiber.StatusBadRequest, "validation_error", "otp_code is required")
	}

	stored, media, err := h.upload(c, "files", "reports/")
	if err != nil {
		return requestError(c, err)
	}

	report, err := h.submissions.Submit(c.UserContext(), code, services.CreateReportInput{
		Latitude:     lat,
		Longitude:    lng,
		Description:  cleanText(c.FormValue("description")),
		CitizenEmail: c.FormValue("email"),
		Media:        media,
	})
	if err != nil {
		h.discard(c.UserContext(), stored)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.present.report(c.UserContext(), report, false))
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	var filter *models.ReportStatus
	raw := c.Query("status")
	if raw == "" {
		raw = c.Query("status_filter")
	}
	if raw != "" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "validation_error", err.Error())
		}
		filter = &st
	}

	reports, err := h.reports.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	staff := middleware.GetIdentity(c) != nil
	out := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, h.present.report(c.UserContext(), &reports[i], staff))
	}
	return c.JSON(out)
}

func (h *ReportHandler) Nearby(c *fiber.Ctx) error {
	lat, err := parseCoordinate(c.Query("lat"), "lat")
	if err != nil {
		return requestError(c, err)
	}
	lng, err := parseCoordinate(c.Query("lng"), "lng")
	if err != nil {
		return requestError(c, err)
	}
	radius := defaultNearbyRadiusKm
	if raw := c.Query("radius_km"); raw != "" {
		if radius, err = parseCoordinate(raw, "radius_km"); err != nil {
			return requestError(c, err)
		}
	}

	hits, err := h.proximity.FindNearby(c.UserContext(), lat, lng, radius)
	if err != nil {
		return respondError(c, err)
	}
	staff := middleware.GetIdentity(c) != nil
	out := make([]dto.ReportResponse, 0, len(hits))
	for i := range hits {
		resp := h.present.report(c.UserContext(), &hits[i].Report, staff)
		d := hits[i].DistanceKm
		resp.DistanceKm = &d
		out = append(out, resp)
	}
	return c.JSON(out)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	report, err := h.reports.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.present.report(c.UserContext(), report, middleware.GetIdentity(c) != nil))
}

func (h *ReportHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body", "Invalid request body")
	}
	to, err := models.ParseStatus(req.Status)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	res, err := h.status.Transition(c.UserContext(), c.Params("id"), to, middleware.GetIdentity(c))
	notifyFailed := errors.Is(err, services.ErrNotificationFailed) && res != nil
	if err != nil && !notifyFailed {
		return respondError(c, err)
	}
	resp := h.present.report(c.UserContext(), res.Report, true)
	resp.NotificationFailed = notifyFailed
	return c.JSON(resp)
}

// AddComment records a staff comment with optional evidence files.
func (h *ReportHandler) AddComment(c *fiber.Ctx) error {
	publicID := c.Params("id")
	content := cleanText(c.FormValue("content"))
	if content == "" {
		return fail(c, fiber.StatusBadRequest, "validation_error", "content is required")
	}

	stored, evidence, err := h.upload(c, "evidences", "comments/"+publicID+"/")
	if err != nil {
		return requestError(c, err)
	}

	var author *string
	if id := middleware.GetIdentity(c); id != nil {
		author = &id.Username
	}
	comment, err := h.reports.AddComment(c.UserContext(), publicID, author, content, evidence)
	if comment == nil {
		h.discard(c.UserContext(), stored)
		return respondError(c, err)
	}
	notifyFailed := errors.Is(err, services.ErrNotificationFailed)
	if err != nil && !notifyFailed {
		slog.Warn("comment saved with error", "public_id", publicID, "request_id", requestID(c), "error", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CommentCreatedResponse{
		CommentResponse:    h.present.comment(c.UserContext(), comment),
		NotificationFailed: notifyFailed,
	})
}

// AddMedia appends photos or videos to an existing report.
func (h *ReportHandler) AddMedia(c *fiber.Ctx) error {
	publicID := c.Params("id")
	stored, media, err := h.upload(c, "files", "reports/"+publicID+"/")
	if err != nil {
		return requestError(c, err)
	}
	if len(media) == 0 {
		return fail(c, fiber.StatusBadRequest, "validation_error", "at least one file is required")
	}

	report, err := h.reports.AddMedia(c.UserContext(), publicID, media)
	if err != nil {
		h.discard(c.UserContext(), stored)
		return respondError(c, err)
	}
	return c.JSON(h.present.report(c.UserContext(), report, true))
}

// Update edits the description and appends media. JSON bodies may only
// carry the description; multipart bodies may also carry files.
func (h *ReportHandler) Update(c *fiber.Ctx) error {
	publicID := c.Params("id")
	var in services.UpdateReportInput
	var stored []storage.Stored

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var req dto.UpdateReportRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid_body", "Invalid request body")
		}
		in.Description = req.Description
	} else {
		if form, err := c.MultipartForm(); err == nil {
			if v, ok := form.Value["description"]; ok && len(v) > 0 {
				in.Description = &v[0]
			}
		}
		var err error
		if stored, in.Media, err = h.upload(c, "files", "reports/"+publicID+"/"); err != nil {
			return requestError(c, err)
		}
	}
	if in.Description != nil {
		d := cleanText(*in.Description)
		in.Description = &d
	}

	report, err := h.reports.Update(c.UserContext(), publicID, in)
	if err != nil {
		h.discard(c.UserContext(), stored)
		return respondError(c, err)
	}
	return c.JSON(h.present.report(c.UserContext(), report, true))
}

// Delete removes the report and then its stored files.
func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	removed, err := h.reports.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	var keys []string
	for _, m := range removed.Media {
		keys = append(keys, m.StorageKey)
	}
	for _, cm := range removed.Comments {
		for _, m := range cm.Media {
			keys = append(keys, m.StorageKey)
		}
	}
	storage.DiscardKeys(context.WithoutCancel(c.UserContext()), h.storage, keys)
	return c.JSON(dto.MessageResponse{Message: "Report deleted"})
}
