package monitor

import (
	"maps"
	"time"
)

type Status struct {
	Upstreams map[string]bool `json:"upstreams"`
	Cache     CacheStatus     `json:"cache"`
	LastCheck time.Time       `json:"last_check"`
}

type CacheStatus struct {
	Backend string `json:"backend,omitempty"`
	Online  bool   `json:"online"`
}

// Healthy is false until the first probe has completed.
func (s Status) Healthy() bool {
	if s.LastCheck.IsZero() || !s.Cache.Online {
		return false
	}
	for _, up := range s.Upstreams {
		if !up {
			return false
		}
	}
	return true
}

func (s Status) clone() Status {
	s.Upstreams = maps.Clone(s.Upstreams)
	return s
}
