package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type RoleMetrics struct {
	resolutions *prometheus.CounterVec
	lookupErrs  *prometheus.CounterVec
}

func NewRoleMetrics(reg prometheus.Registerer) *RoleMetrics {
	if reg == nil {
		return &RoleMetrics{}
	}
	m := &RoleMetrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "role_resolutions_total",
			Help: "Completed role resolutions by role and whether a shopper was provisioned.",
		}, []string{"role", "provisioned"}),
		lookupErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "role_lookup_errors_total",
			Help: "Role table lookups that failed and were treated as not found.",
		}, []string{"table"}),
	}
	reg.MustRegister(m.resolutions, m.lookupErrs)
	return m
}

func (m *RoleMetrics) IncResolution(role string, provisioned bool) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(normalizeLabel(role), strconv.FormatBool(provisioned)).Inc()
}

func (m *RoleMetrics) IncLookupError(table string) {
	if m == nil || m.lookupErrs == nil {
		return
	}
	m.lookupErrs.WithLabelValues(normalizeLabel(table)).Inc()
}
