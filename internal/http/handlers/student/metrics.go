package student

import "github.com/VictoriaMetrics/metrics"

var studentsCreatedTotal = metrics.NewCounter(`students_created_total`)
var studentsUpdatedTotal = metrics.NewCounter(`students_updated_total`)
var studentsDeletedTotal = metrics.NewCounter(`students_deleted_total`)

var studentErrorNotFoundTotal = metrics.NewCounter(`student_errors_total{error="not_found"}`)
var studentErrorBadRequestTotal = metrics.NewCounter(`student_errors_total{error="bad_request"}`)
var studentErrorListTotal = metrics.NewCounter(`student_errors_total{error="list_failed"}`)
var studentErrorCreateTotal = metrics.NewCounter(`student_errors_total{error="create_failed"}`)
var studentErrorUpdateTotal = metrics.NewCounter(`student_errors_total{error="update_failed"}`)
var studentErrorDeleteTotal = metrics.NewCounter(`student_errors_total{error="delete_failed"}`)
