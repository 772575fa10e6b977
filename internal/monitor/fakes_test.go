package monitor_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"price-tracker/internal/models"
	"price-tracker/internal/monitor"
	"price-tracker/internal/scraper"
)

type fakeStore struct {
	mu        sync.Mutex
	alerts    []*models.Alert
	listErr   error
	updateErr map[string]error
	updates   int
}

func newFakeStore(alerts ...models.Alert) *fakeStore {
	s := &fakeStore{updateErr: map[string]error{}}
	for i := range alerts {
		alert := alerts[i]
		s.alerts = append(s.alerts, &alert)
	}
	return s
}

func (s *fakeStore) ListActive(context.Context) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Alert
	for _, a := range s.alerts {
		if a.Active {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdatePrice(_ context.Context, id string, price float64, checkedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.updateErr[id]; err != nil {
		return err
	}
	for _, a := range s.alerts {
		if a.ID == id {
			p, at := price, checkedAt
			a.LastPrice = &p
			a.LastChecked = &at
			s.updates++
			return nil
		}
	}
	return errors.New("not found")
}

func (s *fakeStore) get(id string) models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.alerts {
		if a.ID == id {
			return *a
		}
	}
	return models.Alert{}
}

type result struct {
	price float64
	err   error
	panic bool
}

// fakeScraper serves canned results per URL. When gate is set, FetchPrice
// signals entered and blocks until gate is closed.
type fakeScraper struct {
	platform models.Platform
	results  map[string]result

	mu      sync.Mutex
	calls   []string
	ctxErrs []error

	entered chan struct{}
	gate    chan struct{}
}

func newFakeScraper(platform models.Platform) *fakeScraper {
	return &fakeScraper{platform: platform, results: map[string]result{}}
}

func (f *fakeScraper) Platform() models.Platform { return f.platform }

func (f *fakeScraper) CanHandle(string) bool { return true }

func (f *fakeScraper) FetchPrice(ctx context.Context, url string) (float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	res := f.results[url]
	entered, gate := f.entered, f.gate
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if res.panic {
		panic("selector blew up")
	}
	if res.err == nil && res.price == 0 {
		return 0, scraper.ErrExtractionFailed
	}
	return res.price, res.err
}

func (f *fakeScraper) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeResolver map[models.Platform]scraper.Scraper

func (r fakeResolver) Lookup(platform models.Platform) (scraper.Scraper, error) {
	s, ok := r[platform]
	if !ok {
		return nil, scraper.ErrUnknownPlatform
	}
	return s, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	drops []monitor.PriceDrop
	err   error
}

func (n *recordingNotifier) OnPriceDrop(_ context.Context, drop monitor.PriceDrop) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.drops = append(n.drops, drop)
	return n.err
}

func (n *recordingNotifier) recorded() []monitor.PriceDrop {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]monitor.PriceDrop(nil), n.drops...)
}
