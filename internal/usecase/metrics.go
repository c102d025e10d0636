package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Order status transitions by target and result",
		},
		[]string{"target", "result"},
	)

	remediesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_remedies_total",
			Help: "Problem-order remedies by kind and result",
		},
		[]string{"kind", "result"},
	)

	stockRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_stock_rejections_total",
			Help: "Approvals rejected because the ledger could not cover them",
		},
	)
)
