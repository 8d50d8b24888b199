package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
)

type otpRepository struct{ s *Store }

func (r otpRepository) Upsert(_ context.Context, code *models.OneTimeCode) error {
	defer r.s.lock()()
	st := r.s.st()
	if prev, ok := st.otps[code.Email]; ok {
		code.CreatedAt = prev.CreatedAt
	}
	st.otps[code.Email] = *code
	return nil
}

// GetForUpdate needs no extra locking: units of work are serialized.
func (r otpRepository) GetForUpdate(_ context.Context, email string) (*models.OneTimeCode, error) {
	defer r.s.lock()()
	code, ok := r.s.st().otps[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &code, nil
}

func (r otpRepository) Delete(_ context.Context, email string) error {
	defer r.s.lock()()
	st := r.s.st()
	if _, ok := st.otps[email]; !ok {
		return store.ErrNotFound
	}
	delete(st.otps, email)
	return nil
}

type userRepository struct{ s *Store }

func (r userRepository) Create(_ context.Context, user *models.StaffUser) error {
	defer r.s.lock()()
	st := r.s.st()
	for _, u := range st.users {
		if u.Username == user.Username {
			return fmt.Errorf("create user: username %q already exists", user.Username)
		}
	}
	st.nextUser++
	user.ID = st.nextUser
	st.users[user.ID] = *user
	return nil
}

func (r userRepository) GetByID(_ context.Context, id uint) (*models.StaffUser, error) {
	defer r.s.lock()()
	u, ok := r.s.st().users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (r userRepository) GetByUsername(_ context.Context, username string) (*models.StaffUser, error) {
	defer r.s.lock()()
	for _, u := range r.s.st().users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r userRepository) TouchLastLogin(_ context.Context, id uint, at time.Time) error {
	defer r.s.lock()()
	st := r.s.st()
	u, ok := st.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.LastLoginAt = &at
	u.UpdatedAt = at
	st.users[id] = u
	return nil
}

type sessionRepository struct{ s *Store }

func (r sessionRepository) Replace(_ context.Context, session *models.StaffSession) error {
	defer r.s.lock()()
	st := r.s.st()
	if prev, ok := st.sessions[session.UserID]; ok {
		session.ID = prev.ID
	} else {
		st.nextSession++
		session.ID = st.nextSession
	}
	st.sessions[session.UserID] = *session
	return nil
}

func (r sessionRepository) GetByTokenHash(_ context.Context, hash string) (*models.StaffSession, error) {
	defer r.s.lock()()
	for _, sess := range r.s.st().sessions {
		if sess.TokenHash == hash {
			return &sess, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r sessionRepository) DeleteByUserID(_ context.Context, userID uint) error {
	defer r.s.lock()()
	delete(r.s.st().sessions, userID)
	return nil
}

type reportRepository struct{ s *Store }

func (r reportRepository) Create(_ context.Context, report *models.Report) error {
	defer r.s.lock()()
	st := r.s.st()
	for _, existing := range st.reports {
		if existing.PublicID == report.PublicID {
			return fmt.Errorf("create report: public id %q already exists", report.PublicID)
		}
	}
	st.nextReport++
	report.ID = st.nextReport
	for i := range report.Media {
		st.nextMedia++
		report.Media[i].ID = st.nextMedia
		report.Media[i].ReportID = report.ID
	}
	st.reports[report.ID] = copyReport(*report)
	return nil
}

func (r reportRepository) find(publicID string) (models.Report, bool) {
	for _, rep := range r.s.st().reports {
		if rep.PublicID == publicID {
			return rep, true
		}
	}
	return models.Report{}, false
}

func (r reportRepository) GetByPublicID(_ context.Context, publicID string) (*models.Report, error) {
	defer r.s.lock()()
	rep, ok := r.find(publicID)
	if !ok {
		return nil, store.ErrNotFound
	}
	out := ordered(copyReport(rep))
	return &out, nil
}

func (r reportRepository) LockByPublicID(_ context.Context, publicID string) (*models.Report, error) {
	defer r.s.lock()()
	rep, ok := r.find(publicID)
	if !ok {
		return nil, store.ErrNotFound
	}
	rep.Media, rep.Comments = nil, nil
	return &rep, nil
}

func (r reportRepository) List(_ context.Context, filter store.ReportFilter) ([]models.Report, error) {
	defer r.s.lock()()
	out := make([]models.Report, 0, len(r.s.st().reports))
	for _, rep := range r.s.st().reports {
		if filter.Status != nil && rep.Status != *filter.Status {
			continue
		}
		if b := filter.Bounds; b != nil {
			if rep.Latitude < b.MinLat || rep.Latitude > b.MaxLat ||
				rep.Longitude < b.MinLng || rep.Longitude > b.MaxLng {
				continue
			}
		}
		out = append(out, ordered(copyReport(rep)))
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.ByID {
			return out[i].ID < out[j].ID
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r reportRepository) UpdateFields(_ context.Context, report *models.Report) error {
	defer r.s.lock()()
	st := r.s.st()
	rep, ok := st.reports[report.ID]
	if !ok {
		return store.ErrNotFound
	}
	rep.Description = report.Description
	rep.Status = report.Status
	rep.UpdatedAt = report.UpdatedAt
	st.reports[report.ID] = rep
	return nil
}

func (r reportRepository) MaxMediaOrder(_ context.Context, reportID uint) (int, error) {
	defer r.s.lock()()
	rep := r.s.st().reports[reportID]
	return rep.MaxMediaOrder(), nil
}

func (r reportRepository) CountMedia(_ context.Context, reportID uint) (int64, error) {
	defer r.s.lock()()
	return int64(len(r.s.st().reports[reportID].Media)), nil
}

func (r reportRepository) AddMedia(_ context.Context, media []models.ReportMedia) error {
	defer r.s.lock()()
	st := r.s.st()
	for i := range media {
		rep, ok := st.reports[media[i].ReportID]
		if !ok {
			return store.ErrNotFound
		}
		st.nextMedia++
		media[i].ID = st.nextMedia
		rep.Media = append(rep.Media, media[i])
		st.reports[rep.ID] = rep
	}
	return nil
}

func (r reportRepository) AddComment(_ context.Context, comment *models.ReportComment) error {
	defer r.s.lock()()
	st := r.s.st()
	rep, ok := st.reports[comment.ReportID]
	if !ok {
		return store.ErrNotFound
	}
	st.nextComment++
	comment.ID = st.nextComment
	for i := range comment.Media {
		st.nextCommentMd++
		comment.Media[i].ID = st.nextCommentMd
		comment.Media[i].CommentID = comment.ID
	}
	c := *comment
	c.Media = append([]models.ReportCommentMedia(nil), comment.Media...)
	rep.Comments = append(rep.Comments, c)
	st.reports[rep.ID] = rep
	return nil
}

func (r reportRepository) Delete(_ context.Context, reportID uint) error {
	defer r.s.lock()()
	st := r.s.st()
	if _, ok := st.reports[reportID]; !ok {
		return store.ErrNotFound
	}
	delete(st.reports, reportID)
	return nil
}

func ordered(r models.Report) models.Report {
	sort.SliceStable(r.Media, func(i, j int) bool { return r.Media[i].Order < r.Media[j].Order })
	sort.SliceStable(r.Comments, func(i, j int) bool { return r.Comments[i].CreatedAt.Before(r.Comments[j].CreatedAt) })
	for i := range r.Comments {
		m := r.Comments[i].Media
		sort.SliceStable(m, func(a, b int) bool { return m[a].Order < m[b].Order })
	}
	return r
}
