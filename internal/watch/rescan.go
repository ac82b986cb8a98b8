package watch

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
)

// newRescanScheduler returns a stopped scheduler that requests a rebuild
// every interval. Requests coalesce with pending ones like file events do.
func newRescanScheduler(interval time.Duration, req chan<- struct{}) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryWatch, "failed to create rescan scheduler").Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			select {
			case req <- struct{}{}:
			default:
			}
		}),
		gocron.WithName("rescan"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid rescan interval").
			WithContext("interval", interval.String()).
			Build()
	}
	return s, nil
}
