package bookmark

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var mutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "nav",
	Subsystem: "bookmark",
	Name:      "mutations_total",
	Help:      "Bookmark mutations by action and outcome",
}, []string{"action", "outcome"})
