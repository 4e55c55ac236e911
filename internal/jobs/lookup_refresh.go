package jobs

import (
	"context"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/metadata/internal/store"
	"github.com/sirupsen/logrus"
)

// Refresher re-evaluates a lookup template and caches its choices.
type Refresher interface {
	Refresh(ctx context.Context, template string) ([]string, error)
}

// LookupRefreshTask keeps the cached choices of every lookup template warm.
type LookupRefreshTask struct {
	store     store.MetadataTypeStore
	refresher Refresher
	cron      string
	timeout   time.Duration
}

func NewLookupRefreshTask(schedule string, store store.MetadataTypeStore, refresher Refresher) *LookupRefreshTask {
	return &LookupRefreshTask{
		store:     store,
		refresher: refresher,
		cron:      schedule,
		timeout:   30 * time.Second,
	}
}

func (c *LookupRefreshTask) Schedule() string {
	return c.cron
}

func (c *LookupRefreshTask) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	refreshed, err := c.Refresh(ctx)
	if err != nil {
		logrus.Errorf("lookup refresh failed: %v", err)
		return
	}

	logrus.Debugf("refreshed %d lookup templates", refreshed)
}

// Refresh re-evaluates each distinct lookup template once. A failing
// template is logged and skipped.
func (c *LookupRefreshTask) Refresh(ctx context.Context) (int, error) {
	metadataTypes, err := c.store.ListMetadataTypes(ctx)
	if err != nil {
		return 0, err
	}

	templates := mapset.NewSet[string]()
	for _, metadataType := range metadataTypes {
		if metadataType.Lookup != "" {
			templates.Add(metadataType.Lookup)
		}
	}

	refreshed := 0
	for _, template := range templates.ToSlice() {
		if _, err := c.refresher.Refresh(ctx, template); err != nil {
			logrus.WithField("template", template).Warnf("lookup refresh: %v", err)
			continue
		}
		refreshed++
	}

	return refreshed, nil
}
