package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Metrics names.
	MetricNameBuildInfo    = "recordctl_build_info"
	MetricNameSubmissions  = "recordctl_submissions_total"
	MetricNameOfflineDumps = "recordctl_offline_dumps_total"
	MetricNameErrors       = "recordctl_errors_total"

	// Labels.
	LabelVersion   = "version"
	LabelCommit    = "commit"
	LabelDate      = "date"
	LabelStep      = "step"
	LabelResult    = "result"
	LabelErrorType = "error_type"

	// Results.
	ResultSuccess = "success"
	ResultError   = "error"

	// Error types.
	ErrorTypeConfig         = "config"
	ErrorTypeEncoding       = "encoding"
	ErrorTypeReadAccount    = "read_account"
	ErrorTypeProgramData    = "program_data"
	ErrorTypeAccountInUse   = "account_in_use"
	ErrorTypeAuthorityClose = "authority_close"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNameBuildInfo,
			Help: "Build information of recordctl",
		},
		[]string{LabelVersion, LabelCommit, LabelDate},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSubmissions,
			Help: "Number of lifecycle transactions sent to the cluster, by step and result",
		},
		[]string{LabelStep, LabelResult},
	)

	OfflineDumps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOfflineDumps,
			Help: "Number of instructions dumped for signing by an external authority",
		},
		[]string{LabelStep},
	)

	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameErrors,
			Help: "Number of errors encountered",
		},
		[]string{LabelErrorType},
	)
)

// WriteTextfile writes the default registry in the text exposition format, for pickup by the
// node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
