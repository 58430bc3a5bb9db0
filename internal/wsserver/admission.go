package wsserver

import (
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/leslieo2/go-hot-reload/internal/constants"
)

// admission guards the handshake path against connection floods with one
// token bucket per remote IP. Buckets expire after the cleanup interval so
// the cache stays bounded.
type admission struct {
	limiters *cache.Cache
	rps      rate.Limit
	burst    int
}

func newAdmission(rps, burst int) *admission {
	return &admission{
		limiters: cache.New(constants.AdmissionCleanupInterval, 2*constants.AdmissionCleanupInterval),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// allow reports whether a new connection from ip may proceed to handshake.
func (a *admission) allow(ip string) bool {
	if limiter, found := a.limiters.Get(ip); found {
		return limiter.(*rate.Limiter).Allow()
	}

	if a.limiters.ItemCount() >= constants.AdmissionMaxCacheSize {
		a.limiters.Flush()
	}

	limiter := rate.NewLimiter(a.rps, a.burst)
	a.limiters.SetDefault(ip, limiter)
	return limiter.Allow()
}
