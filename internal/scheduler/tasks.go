package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskDailyReminder fans out pending-request reminders to professionals.
// Enqueued by the cron schedule every evening.
const TaskDailyReminder = "professionals.daily_reminder"

// TaskServiceReportExport generates a CSV service report for one
// professional.
const TaskServiceReportExport = "exports.service_report"

type ServiceReportExportPayload struct {
	ProfessionalID string `json:"professionalId"`
}

func NewDailyReminderTask() *asynq.Task {
	return asynq.NewTask(TaskDailyReminder, nil)
}

func NewServiceReportExportTask(payload ServiceReportExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskServiceReportExport, data), nil
}

func ParseServiceReportExportPayload(task *asynq.Task) (ServiceReportExportPayload, error) {
	var payload ServiceReportExportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ServiceReportExportPayload{}, err
	}
	return payload, nil
}
