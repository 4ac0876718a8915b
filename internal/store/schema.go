package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the repositories.
const (
	tableBackendEvents = "backend_events"
	tableAnswerEvents  = "answer_events"
	tableSessionEvents = "session_events"
	tableSnapshots     = "snapshots"
)

const textSize = 2147483647

// eventColumns are the columns every event table starts with: an
// auto-increment ID, the global sequence and the wall-clock timestamp.
func eventColumns(extra ...*schema.Column) []*schema.Column {
	cols := []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
	return append(cols, extra...)
}

var (
	// BackendEventsColumns holds the columns for the "backend_events" table.
	BackendEventsColumns = eventColumns(
		&schema.Column{Name: "operation", Type: field.TypeString},
		&schema.Column{Name: "method", Type: field.TypeString},
		&schema.Column{Name: "path", Type: field.TypeString},
		&schema.Column{Name: "request_id", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "status_code", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
		&schema.Column{Name: "request_body", Type: field.TypeString, Size: textSize, Default: ""},
		&schema.Column{Name: "response_body", Type: field.TypeString, Size: textSize, Default: ""},
	)
	// BackendEventsTable holds the schema information for the "backend_events" table.
	BackendEventsTable = &schema.Table{
		Name:       tableBackendEvents,
		Columns:    BackendEventsColumns,
		PrimaryKey: []*schema.Column{BackendEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "backendevent_operation",
				Unique:  false,
				Columns: []*schema.Column{BackendEventsColumns[3]},
			},
		},
	}

	// AnswerEventsColumns holds the columns for the "answer_events" table.
	AnswerEventsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "lesson_id", Type: field.TypeInt},
		&schema.Column{Name: "card_id", Type: field.TypeInt},
		&schema.Column{Name: "card_type", Type: field.TypeString},
		&schema.Column{Name: "input_mode", Type: field.TypeString},
		&schema.Column{Name: "question_text", Type: field.TypeString, Size: textSize, Default: ""},
		&schema.Column{Name: "answer", Type: field.TypeString, Size: textSize, Default: ""},
		&schema.Column{Name: "precheck", Type: field.TypeBool},
		&schema.Column{Name: "correct", Type: field.TypeBool},
		&schema.Column{Name: "status", Type: field.TypeInt},
		&schema.Column{Name: "attempts", Type: field.TypeInt},
		&schema.Column{Name: "experience_gained", Type: field.TypeInt, Default: 0},
	)
	// AnswerEventsTable holds the schema information for the "answer_events" table.
	AnswerEventsTable = &schema.Table{
		Name:       tableAnswerEvents,
		Columns:    AnswerEventsColumns,
		PrimaryKey: []*schema.Column{AnswerEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "answerevent_session_id",
				Unique:  false,
				Columns: []*schema.Column{AnswerEventsColumns[3]},
			},
		},
	}

	// SessionEventsColumns holds the columns for the "session_events" table.
	SessionEventsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "action", Type: field.TypeString},
		&schema.Column{Name: "lesson_id", Type: field.TypeInt},
		&schema.Column{Name: "lesson_title", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "topic", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "attempt_id", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "cards_total", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "cards_correct", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "score", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "experience_gained", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "duration_secs", Type: field.TypeInt, Default: 0},
	)
	// SessionEventsTable holds the schema information for the "session_events" table.
	SessionEventsTable = &schema.Table{
		Name:       tableSessionEvents,
		Columns:    SessionEventsColumns,
		PrimaryKey: []*schema.Column{SessionEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "sessionevent_session_id_action",
				Unique:  false,
				Columns: []*schema.Column{SessionEventsColumns[3], SessionEventsColumns[4]},
			},
		},
	}

	// SnapshotsColumns holds the columns for the "snapshots" table.
	SnapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "data", Type: field.TypeString, Size: textSize},
	}
	// SnapshotsTable holds the schema information for the "snapshots" table.
	SnapshotsTable = &schema.Table{
		Name:       tableSnapshots,
		Columns:    SnapshotsColumns,
		PrimaryKey: []*schema.Column{SnapshotsColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		BackendEventsTable,
		AnswerEventsTable,
		SessionEventsTable,
		SnapshotsTable,
	}
)
