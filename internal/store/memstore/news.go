package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
)

type newsRepository struct{ s *Store }

func (r newsRepository) Create(_ context.Context, item *models.News) error {
	defer r.s.lock()()
	st := r.s.st()
	st.nextNews++
	item.ID = st.nextNews
	for i := range item.Media {
		st.nextNewsMedia++
		item.Media[i].ID = st.nextNewsMedia
		item.Media[i].NewsID = item.ID
	}
	st.news[item.ID] = copyNews(*item)
	return nil
}

func (r newsRepository) Get(_ context.Context, id uint) (*models.News, error) {
	defer r.s.lock()()
	n, ok := r.s.st().news[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := copyNews(n)
	return &out, nil
}

func (r newsRepository) Lock(ctx context.Context, id uint) (*models.News, error) {
	return r.Get(ctx, id)
}

func (r newsRepository) List(_ context.Context) ([]models.News, error) {
	defer r.s.lock()()
	out := make([]models.News, 0, len(r.s.st().news))
	for _, n := range r.s.st().news {
		out = append(out, copyNews(n))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r newsRepository) UpdateFields(_ context.Context, item *models.News) error {
	defer r.s.lock()()
	st := r.s.st()
	n, ok := st.news[item.ID]
	if !ok {
		return store.ErrNotFound
	}
	updated := copyNews(*item)
	n.Title = updated.Title
	n.Description = updated.Description
	n.StartsAt = updated.StartsAt
	n.EndsAt = updated.EndsAt
	n.UpdatedAt = updated.UpdatedAt
	st.news[n.ID] = n
	return nil
}

func (r newsRepository) AddMedia(_ context.Context, media []models.NewsMedia) error {
	defer r.s.lock()()
	st := r.s.st()
	for i := range media {
		n, ok := st.news[media[i].NewsID]
		if !ok {
			return store.ErrNotFound
		}
		st.nextNewsMedia++
		media[i].ID = st.nextNewsMedia
		n.Media = append(n.Media, media[i])
		st.news[n.ID] = n
	}
	return nil
}

func (r newsRepository) Delete(_ context.Context, id uint) error {
	defer r.s.lock()()
	st := r.s.st()
	if _, ok := st.news[id]; !ok {
		return store.ErrNotFound
	}
	delete(st.news, id)
	return nil
}

type visitorRepository struct{ s *Store }

func (r visitorRepository) Touch(_ context.Context, token string, at time.Time) (bool, error) {
	defer r.s.lock()()
	st := r.s.st()
	if v, ok := st.visitors[token]; ok {
		v.LastSeenAt = at
		st.visitors[token] = v
		return false, nil
	}
	st.nextVisitor++
	st.visitors[token] = models.Visitor{
		ID:          st.nextVisitor,
		DeviceToken: token,
		FirstSeenAt: at,
		LastSeenAt:  at,
	}
	return true, nil
}

func (r visitorRepository) Count(context.Context) (int64, error) {
	defer r.s.lock()()
	return int64(len(r.s.st().visitors)), nil
}
