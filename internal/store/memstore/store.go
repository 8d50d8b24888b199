// Package memstore is an in-process store.Store. Every unit of work holds
// a single mutex and is rolled back by restoring a snapshot, so units of
// work are fully serialized.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
)

type state struct {
	otps     map[string]models.OneTimeCode
	users    map[uint]models.StaffUser
	sessions map[uint]models.StaffSession // keyed by user id
	reports  map[uint]models.Report
	news     map[uint]models.News
	visitors map[string]models.Visitor // keyed by device token

	nextUser, nextSession, nextReport     uint
	nextMedia, nextComment, nextCommentMd uint
	nextNews, nextNewsMedia, nextVisitor  uint
}

func newState() *state {
	return &state{
		otps:     make(map[string]models.OneTimeCode),
		users:    make(map[uint]models.StaffUser),
		sessions: make(map[uint]models.StaffSession),
		reports:  make(map[uint]models.Report),
		news:     make(map[uint]models.News),
		visitors: make(map[string]models.Visitor),
	}
}

func (s *state) clone() *state {
	c := *s
	c.otps = make(map[string]models.OneTimeCode, len(s.otps))
	for k, v := range s.otps {
		c.otps[k] = v
	}
	c.users = make(map[uint]models.StaffUser, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.sessions = make(map[uint]models.StaffSession, len(s.sessions))
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	c.reports = make(map[uint]models.Report, len(s.reports))
	for k, v := range s.reports {
		c.reports[k] = copyReport(v)
	}
	c.news = make(map[uint]models.News, len(s.news))
	for k, v := range s.news {
		c.news[k] = copyNews(v)
	}
	c.visitors = make(map[string]models.Visitor, len(s.visitors))
	for k, v := range s.visitors {
		c.visitors[k] = v
	}
	return &c
}

type Store struct {
	mu   *sync.Mutex
	data **state
	inTx bool
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	data := newState()
	return &Store{mu: &sync.Mutex{}, data: &data}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) st() *state { return *s.data }

func (s *Store) OTPs() store.OTPRepository         { return otpRepository{s} }
func (s *Store) Users() store.UserRepository       { return userRepository{s} }
func (s *Store) Sessions() store.SessionRepository { return sessionRepository{s} }
func (s *Store) Reports() store.ReportRepository   { return reportRepository{s} }
func (s *Store) News() store.NewsRepository        { return newsRepository{s} }
func (s *Store) Visitors() store.VisitorRepository { return visitorRepository{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) (err error) {
	if s.inTx {
		return fn(ctx, s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st().clone()
	defer func() {
		if p := recover(); p != nil {
			*s.data = snapshot
			panic(p)
		}
		if err != nil {
			*s.data = snapshot
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &Store{mu: s.mu, data: s.data, inTx: true})
}

func (s *Store) Ping(context.Context) error { return nil }

func copyReport(r models.Report) models.Report {
	if r.CitizenEmail != nil {
		email := *r.CitizenEmail
		r.CitizenEmail = &email
	}
	r.Media = append([]models.ReportMedia(nil), r.Media...)
	comments := make([]models.ReportComment, len(r.Comments))
	for i, c := range r.Comments {
		if c.Author != nil {
			author := *c.Author
			c.Author = &author
		}
		c.Media = append([]models.ReportCommentMedia(nil), c.Media...)
		comments[i] = c
	}
	r.Comments = comments
	return r
}

func copyNews(n models.News) models.News {
	if n.Description != nil {
		d := *n.Description
		n.Description = &d
	}
	if n.StartsAt != nil {
		t := *n.StartsAt
		n.StartsAt = &t
	}
	if n.EndsAt != nil {
		t := *n.EndsAt
		n.EndsAt = &t
	}
	n.Media = append([]models.NewsMedia(nil), n.Media...)
	sort.SliceStable(n.Media, func(i, j int) bool { return n.Media[i].Order < n.Media[j].Order })
	return n
}
