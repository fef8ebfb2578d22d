package metrics

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leengari/tdsmeta/internal/tds"
)

const namespace = "tdsmeta"

// Observer counts COLMETADATA decode events
type Observer struct {
	tokens      prometheus.Counter
	columns     prometheus.Counter
	encrypted   prometheus.Counter
	suspensions *prometheus.CounterVec
	errs        *prometheus.CounterVec
}

func NewObserver() *Observer {
	return &Observer{
		tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "colmetadata_tokens_total",
			Help:      "COLMETADATA tokens decoded.",
		}),
		columns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "columns_decoded_total",
			Help:      "Columns decoded across all COLMETADATA tokens.",
		}),
		encrypted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encrypted_columns_total",
			Help:      "Decoded columns carrying crypto metadata.",
		}),
		suspensions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_suspensions_total",
			Help:      "Decodes suspended for lack of data, by stage.",
		}, []string{"stage"}),
		errs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Fatal COLMETADATA decode errors, by kind.",
		}, []string{"kind"}),
	}
}

// Metrics returns the collectors to register
func (o *Observer) Metrics() []prometheus.Collector {
	return []prometheus.Collector{o.tokens, o.columns, o.encrypted, o.suspensions, o.errs}
}

// OnEvent implements tds.Observer
func (o *Observer) OnEvent(event tds.Event) {
	switch event.Type {
	case tds.EventTokenEnd:
		o.tokens.Inc()
	case tds.EventColumn:
		o.columns.Inc()
		if c, ok := event.Data.(tds.ColumnMetadata); ok && c.CryptoMetadata != nil {
			o.encrypted.Inc()
		}
	case tds.EventSuspend:
		stage, _ := event.Data.(string)
		o.suspensions.WithLabelValues(stage).Inc()
	case tds.EventDecodeError:
		err, _ := event.Data.(error)
		o.errs.WithLabelValues(errorKind(err)).Inc()
	}
}

func errorKind(err error) string {
	var unknownType *tds.UnknownDataTypeError
	switch {
	case errors.Is(err, tds.ErrMalformedAlwaysEncryptedTable):
		return "malformed_cek_table"
	case errors.As(err, &unknownType):
		return "unknown_data_type"
	default:
		return "other"
	}
}

// NewRegistry registers cols alongside the Go runtime collector
func NewRegistry(cols ...prometheus.Collector) *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector())
	r.MustRegister(cols...)

	return r
}

// Handler exposes r in the text exposition format
func Handler(r *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(r, promhttp.HandlerOpts{})
}
