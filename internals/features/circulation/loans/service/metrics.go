package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loansCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "biblioteca",
		Name:      "loans_created_total",
		Help:      "Loans created.",
	})
	loansReturned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "biblioteca",
		Name:      "loans_returned_total",
		Help:      "Loans returned.",
	})
	finesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "biblioteca",
		Name:      "fines_generated_total",
		Help:      "Late fines generated on return.",
	})
)
