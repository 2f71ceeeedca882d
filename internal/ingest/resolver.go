package ingest

import "strings"

// Canonical field names recognized by the resolver.
const (
	FieldDate            = "date"
	FieldProject         = "project"
	FieldProjectCheck    = "projectCheck"
	FieldPureHours       = "pureHours"
	FieldCheckedTasks    = "checkedTasks"
	FieldMarkupHours     = "markupHours"
	FieldMarkedTasks     = "markedTasks"
	FieldMarkupCheck     = "markupCheck"
	FieldAdditionalHours = "additionalHours"
	FieldOtherCheck      = "otherCheck"
	FieldOvertimeHours   = "overtimeHours"
	FieldOvertimeCheck   = "overtimeCheck"
	FieldIdleHours       = "idleHours"
)

// aliases maps each canonical field to the column identifiers seen across
// deployments, in resolution order. The single-letter entries are the bare
// column IDs some documents expose.
var aliases = map[string][]string{
	FieldDate:            {"Дата", "Date", "B"},
	FieldProject:         {"Наименование", "Project", "Проекты", "H"},
	FieldProjectCheck:    {"Проект", "Project_Check", "C"},
	FieldPureHours:       {"Чистых_часов_валидации", "Pure_Hours", "Hours", "K"},
	FieldCheckedTasks:    {"Факт_проверок_шт", "Checked_Tasks", "Tasks_Checked", "J"},
	FieldMarkupHours:     {"Часов_разметки", "Markup_Hours", "Q"},
	FieldMarkedTasks:     {"Факт_разметка_шт", "Marked_Tasks", "P"},
	FieldMarkupCheck:     {"Разметка", "Markup_Check", "D"},
	FieldAdditionalHours: {"Иных_часов_работы", "Other_Hours", "Additional_Hours", "L"},
	FieldOtherCheck:      {"Другое", "Other_Check", "E"},
	FieldOvertimeHours:   {"Часы_переработки", "Overtime_Hours", "M"},
	FieldOvertimeCheck:   {"Переработка", "Overtime_Check", "F"},
	FieldIdleHours:       {"Часы_простоя", "Idle_Hours", "N"},
}

var sanitizer = strings.NewReplacer(" ", "_", "\t", "_", ".", "_")

// Resolve returns the value of the canonical field on the row, or nil when no
// alias matches. Verbatim alias hits win over sanitized ones: all aliases are
// tried as-is before any is retried with whitespace and dots collapsed to
// underscores.
func Resolve(row RawRecord, field string) any {
	names, ok := aliases[field]
	if !ok {
		return nil
	}
	for _, name := range names {
		if v, ok := row[name]; ok {
			return v
		}
	}
	for _, name := range names {
		if v, ok := row[sanitizer.Replace(name)]; ok {
			return v
		}
	}
	return nil
}
