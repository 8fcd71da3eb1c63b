package ui

import "github.com/recurrence-scheduler/scheduler-web/pkg/format"

var messages = map[format.Locale]map[string]string{
	format.Japanese: {
		"title":          "スケジューラー",
		"tab.calendars":  "カレンダー一覧",
		"tab.events":     "イベント",
		"tab.create":     "作成",
		"tab.month":      "月表示",
		"loading":        "読み込み中...",
		"error":          "エラー",
		"no_description": "説明なし",

		"calendars.empty":      "カレンダーがありません",
		"calendars.empty_hint": "「作成」タブからカレンダーを作成してください",
		"events.empty":         "イベントがありません",
		"events.prompt":        "カレンダーを選択して読み込みボタンをクリック",

		"label.id":          "ID",
		"label.timezone":    "タイムゾーン",
		"label.start":       "開始",
		"label.end":         "終了",
		"label.recurrence":  "繰り返し",
		"label.calendar":    "カレンダー",
		"label.select":      "選択してください",
		"label.start_date":  "開始日",
		"label.end_date":    "終了日",
		"label.name":        "名前",
		"label.description": "説明",
		"label.title":       "タイトル",
		"label.freq":        "頻度",
		"label.freq_none":   "なし",
		"label.interval":    "間隔",
		"label.byday":       "曜日",
		"label.count":       "回数",
		"label.until":       "終了日",

		"action.load":            "読み込み",
		"action.create_calendar": "カレンダーを作成",
		"action.create_event":    "イベントを作成",
		"action.occurrences":     "繰り返しを展開",
		"action.export_ics":      "ICSでエクスポート",
		"action.export_csv":      "CSVでエクスポート",
		"action.prev":            "前月",
		"action.next":            "翌月",
		"action.back":            "戻る",

		"heading.new_calendar": "新しいカレンダー",
		"heading.new_event":    "新しいイベント",
		"heading.occurrences":  "発生日時",

		"toast.select_calendar":        "カレンダーを選択してください",
		"toast.invalid_range":          "日付の範囲が正しくありません",
		"toast.calendars_load_failed":  "カレンダーの読み込みに失敗しました",
		"toast.events_load_failed":     "イベントの読み込みに失敗しました",
		"toast.calendar_created":       "カレンダーを作成しました",
		"toast.calendar_create_failed": "カレンダーの作成に失敗しました: ",
		"toast.event_created":          "イベントを作成しました",
		"toast.event_create_failed":    "イベントの作成に失敗しました: ",
		"toast.occurrences_failed":     "繰り返しの展開に失敗しました: ",
		"toast.export_empty":           "エクスポートするイベントがありません",
	},
	format.English: {
		"title":          "Scheduler",
		"tab.calendars":  "Calendars",
		"tab.events":     "Events",
		"tab.create":     "Create",
		"tab.month":      "Month",
		"loading":        "Loading...",
		"error":          "Error",
		"no_description": "No description",

		"calendars.empty":      "No calendars yet",
		"calendars.empty_hint": "Create one from the Create tab",
		"events.empty":         "No events",
		"events.prompt":        "Select a calendar and click Load",

		"label.id":          "ID",
		"label.timezone":    "Timezone",
		"label.start":       "Start",
		"label.end":         "End",
		"label.recurrence":  "Repeats",
		"label.calendar":    "Calendar",
		"label.select":      "Select...",
		"label.start_date":  "From",
		"label.end_date":    "To",
		"label.name":        "Name",
		"label.description": "Description",
		"label.title":       "Title",
		"label.freq":        "Frequency",
		"label.freq_none":   "None",
		"label.interval":    "Interval",
		"label.byday":       "Days",
		"label.count":       "Count",
		"label.until":       "Until",

		"action.load":            "Load",
		"action.create_calendar": "Create calendar",
		"action.create_event":    "Create event",
		"action.occurrences":     "Expand occurrences",
		"action.export_ics":      "Export ICS",
		"action.export_csv":      "Export CSV",
		"action.prev":            "Previous",
		"action.next":            "Next",
		"action.back":            "Back",

		"heading.new_calendar": "New calendar",
		"heading.new_event":    "New event",
		"heading.occurrences":  "Occurrences",

		"toast.select_calendar":        "Please select a calendar",
		"toast.invalid_range":          "The date range is invalid",
		"toast.calendars_load_failed":  "Failed to load calendars",
		"toast.events_load_failed":     "Failed to load events",
		"toast.calendar_created":       "Calendar created",
		"toast.calendar_create_failed": "Failed to create calendar: ",
		"toast.event_created":          "Event created",
		"toast.event_create_failed":    "Failed to create event: ",
		"toast.occurrences_failed":     "Failed to expand occurrences: ",
		"toast.export_empty":           "There are no events to export",
	},
}

// message looks key up in locale, then in Japanese, and finally returns the key itself.
func message(locale format.Locale, key string) string {
	if m, ok := messages[locale][key]; ok {
		return m
	}
	if m, ok := messages[format.Japanese][key]; ok {
		return m
	}
	return key
}
