package common

import (
	"net/http"
)

type CollectorMetrics interface {
	Handler(h http.Handler) http.Handler
	ObserveFetch(repo string, ok bool)
	ObserveStore(sink string, count int, err error)
	ObserveCacheHitRatio(ratio float64)
}
