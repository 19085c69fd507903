package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

var (
	// UploadsTotal counts successful file uploads by category.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursecms",
		Name:      "file_uploads_total",
		Help:      "Successful file uploads partitioned by category.",
	}, []string{"category"})

	// UploadFailuresTotal counts failed uploads by failure stage.
	UploadFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursecms",
		Name:      "file_upload_failures_total",
		Help:      "Failed file uploads partitioned by stage (validate, blob, metadata).",
	}, []string{"stage"})

	// ReadsTotal counts successful file reads served through the access gateway.
	ReadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coursecms",
		Name:      "file_reads_total",
		Help:      "Successful file reads served.",
	})

	// OrphanCleanupsTotal counts compensating blob deletions after a failed upload.
	OrphanCleanupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coursecms",
		Name:      "file_orphan_cleanups_total",
		Help:      "Blob deletions performed to compensate a failed metadata write.",
	})
)
