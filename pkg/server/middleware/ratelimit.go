package middleware

import (
	"fmt"
	"net/http"

	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimitMiddleware caps requests per client IP with a rate such as
// "10-M" (ten per minute). Requests over the limit get 429. An empty rate
// returns the handler unchanged.
func RateLimitMiddleware(rate string) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}
	mw := stdlibmw.NewMiddleware(limiter.New(memory.NewStore(), r))
	return mw.Handler, nil
}
