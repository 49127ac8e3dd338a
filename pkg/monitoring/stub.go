package monitoring

import (
	"net/http"

	"github.com/sdkexamples/sdkexamples/pkg/common"
)

type stubMetrics struct{}

func NewStub() *stubMetrics {
	return &stubMetrics{}
}

var _ common.CollectorMetrics = (*stubMetrics)(nil)

func (sm *stubMetrics) Handler(h http.Handler) http.Handler {
	return h
}

func (sm *stubMetrics) ObserveFetch(repo string, ok bool)              {}
func (sm *stubMetrics) ObserveStore(sink string, count int, err error) {}
func (sm *stubMetrics) ObserveCacheHitRatio(ratio float64)             {}
