package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var taskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scheduler_task_runs_total",
	Help: "Scheduled task runs by task and result",
}, []string{"task", "result"})
