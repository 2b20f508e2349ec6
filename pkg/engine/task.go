package engine

import (
	"time"
)

// TaskType selects the analysis routine a task runs.
type TaskType string

const (
	TaskDealHunting          TaskType = "deal_hunting"
	TaskComplianceMonitoring TaskType = "compliance_monitoring"
	TaskPriceTracking        TaskType = "price_tracking"
	TaskOptimization         TaskType = "optimization"
	TaskPredictiveAnalysis   TaskType = "predictive_analysis"
)

// TaskTypes lists every known task type.
var TaskTypes = []TaskType{
	TaskDealHunting,
	TaskComplianceMonitoring,
	TaskPriceTracking,
	TaskOptimization,
	TaskPredictiveAnalysis,
}

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	for _, known := range TaskTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Priority orders queued tasks.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Weight returns the scheduling weight of p. Unknown priorities weigh 0.
func (p Priority) Weight() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusQueued     TaskStatus = "queued"
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// Task is one unit of background analysis.
type Task struct {
	ID                string     `json:"id"`
	Type              TaskType   `json:"type"`
	Priority          Priority   `json:"priority"`
	Status            TaskStatus `json:"status"`
	Context           *AIContext `json:"context,omitempty"`
	ScheduledFor      time.Time  `json:"scheduledFor"`
	ProcessingStarted *time.Time `json:"processingStarted,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	Result            []Insight  `json:"result,omitempty"`
	Error             error      `json:"-"`

	seq uint64
}

// taskQueue is an insertion-ordered list of live tasks.
// Callers hold the scheduler lock.
type taskQueue struct {
	tasks []*Task
	seq   uint64
}

func (q *taskQueue) push(t *Task) {
	q.seq++
	t.seq = q.seq
	q.tasks = append(q.tasks, t)
}

// next returns the queued task with the highest priority weight. Equal
// weights resolve to the earliest queued task.
func (q *taskQueue) next() *Task {
	var best *Task
	for _, t := range q.tasks {
		if t.Status != StatusQueued {
			continue
		}
		if best == nil ||
			t.Priority.Weight() > best.Priority.Weight() ||
			(t.Priority.Weight() == best.Priority.Weight() && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (q *taskQueue) remove(id string) {
	for i, t := range q.tasks {
		if t.ID == id {
			q.tasks = append(q.tasks[:i], q.tasks[i+1:]...)
			return
		}
	}
}

func (q *taskQueue) len() int {
	return len(q.tasks)
}
