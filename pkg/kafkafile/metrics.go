package kafkafile

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafkafile_operations_total",
			Help: "Registry operations by outcome status.",
		},
		[]string{"operation", "status"},
	)

	// compensationsTotal counts rollback attempts after a failed blob write.
	// result="failed" means metadata and blobs may now disagree.
	compensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafkafile_compensations_total",
			Help: "Compensating metadata writes issued after a failed blob write.",
		},
		[]string{"operation", "result"},
	)
)

func observe(operation string, status Status) Status {
	operationsTotal.WithLabelValues(operation, strings.ReplaceAll(status.String(), " ", "_")).Inc()
	return status
}

func observeCompensation(operation string, ok bool) {
	result := "succeeded"
	if !ok {
		result = "failed"
	}
	compensationsTotal.WithLabelValues(operation, result).Inc()
}
