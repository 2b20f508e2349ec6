package providers

import "time"

// unhealthyThreshold is the number of failed queries in a row after which
// a provider reports itself unhealthy. One success restores it.
const unhealthyThreshold = 3

// IsHealthy reports whether the provider is currently healthy.
func (p *HTTPProvider) IsHealthy() bool {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health.IsHealthy
}

// GetHealth returns a copy of the provider's health record.
func (p *HTTPProvider) GetHealth() ProviderHealth {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health
}

func (p *HTTPProvider) updateHealth(ok bool, err error) {
	p.healthMu.Lock()
	h := &p.health
	wasHealthy := h.IsHealthy
	h.LastCheck = time.Now()
	if ok {
		h.IsHealthy = true
		h.ConsecutiveFailures = 0
		h.LastError = nil
		h.LastSuccessfulRequest = h.LastCheck
	} else {
		h.ConsecutiveFailures++
		h.LastError = err
		if h.ConsecutiveFailures >= unhealthyThreshold {
			h.IsHealthy = false
		}
	}
	failures := h.ConsecutiveFailures
	nowHealthy := h.IsHealthy
	p.healthMu.Unlock()

	switch {
	case !wasHealthy && nowHealthy:
		p.logger.Info("provider recovered")
	case wasHealthy && !nowHealthy:
		p.logger.Warn("provider marked unhealthy", "consecutive_failures", failures, "error", err)
	}
}

// recordRequest counts one HTTP attempt.
func (p *HTTPProvider) recordRequest(ok bool) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()
	p.health.TotalRequests++
	if !ok {
		p.health.FailedRequests++
	}
}
