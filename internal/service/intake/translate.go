package intake

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

// Submission field names.
const (
	FieldMode      = "mode"
	FieldDate      = "date"
	FieldStartDate = "startDate"
	FieldEndDate   = "endDate"
	FieldDates     = "dates"
	FieldSlot      = "slot"
	FieldStartTime = "start_time"
)

var (
	// dateLayouts are accepted for single date fields.
	dateLayouts = []string{"02/01/2006", bell.DateLayout}
	// listDateLayouts are accepted inside date lists.
	listDateLayouts = []string{"02/01/2006", bell.DateLayout, "02/01/06"}
	// legacyRangeFields are the spaced range keys some clients still send.
	legacyRangeFields = [2]string{"start date", "end date"}
)

// Translate converts a submission into canonical intake lines.
// A date list yields one line per date, in ascending date order.
// An immediate ring without start_time rings at now.
func Translate(fields map[string]any, now time.Time) ([]string, error) {
	mode, err := intField(fields, FieldMode)
	if err != nil {
		return nil, err
	}

	kind := bell.Kind(mode)

	var records []bell.Record

	switch {
	case kind == bell.KindHoliday:
		records, err = translateDates(fields, bell.Record{Kind: kind})
	case kind.IsExam():
		records, err = translateExam(fields, kind)
	case kind == bell.KindImmediateRing:
		records, err = translateImmediate(fields, now)
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", bell.ErrInvalidSubmission, mode)
	}

	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(records))

	for _, record := range records {
		line := bell.FormatRecord(record)

		// The canonical line must survive the normalizer's parser.
		if _, parseErr := bell.ParseRecord(line); parseErr != nil {
			return nil, fmt.Errorf("%w: %w", bell.ErrInvalidSubmission, parseErr)
		}

		lines = append(lines, line)
	}

	return lines, nil
}

func translateExam(fields map[string]any, kind bell.Kind) ([]bell.Record, error) {
	slot, err := intField(fields, FieldSlot)
	if err != nil {
		return nil, err
	}

	baseTime, err := timeField(fields, FieldStartTime)
	if err != nil {
		return nil, err
	}

	return translateDates(fields, bell.Record{
		Kind:     kind,
		Slot:     slot,
		BaseTime: baseTime,
	})
}

func translateImmediate(fields map[string]any, now time.Time) ([]bell.Record, error) {
	baseTime := bell.TimeOfDayOf(now)

	if _, ok := fields[FieldStartTime]; ok {
		var err error
		if baseTime, err = timeField(fields, FieldStartTime); err != nil {
			return nil, err
		}
	}

	return []bell.Record{{Kind: bell.KindImmediateRing, BaseTime: baseTime}}, nil
}

// translateDates fills the date part of template from whichever date shape the submission uses.
func translateDates(fields map[string]any, template bell.Record) ([]bell.Record, error) {
	if list, ok := dateList(fields); ok {
		dates, err := parseDateList(list)
		if err != nil {
			return nil, err
		}

		records := make([]bell.Record, 0, len(dates))

		for _, date := range dates {
			record := template
			record.Start, record.End = date, date
			records = append(records, record)
		}

		return records, nil
	}

	start, end, err := dateRange(fields)
	if err != nil {
		return nil, err
	}

	template.Start, template.End = start, end

	return []bell.Record{template}, nil
}

func dateRange(fields map[string]any) (bell.Date, bell.Date, error) {
	for _, keys := range [][2]string{{FieldStartDate, FieldEndDate}, legacyRangeFields} {
		if _, ok := fields[keys[0]]; !ok {
			continue
		}

		start, err := dateField(fields, keys[0], dateLayouts)
		if err != nil {
			return bell.Date{}, bell.Date{}, err
		}

		end, err := dateField(fields, keys[1], dateLayouts)
		if err != nil {
			return bell.Date{}, bell.Date{}, err
		}

		return start, end, nil
	}

	date, err := dateField(fields, FieldDate, dateLayouts)
	if err != nil {
		return bell.Date{}, bell.Date{}, err
	}

	return date, date, nil
}

// dateList returns the date list from "dates", or from "date" when it holds a list or a set.
func dateList(fields map[string]any) ([]any, bool) {
	for _, key := range []string{FieldDates, FieldDate} {
		switch value := fields[key].(type) {
		case []any:
			return value, true
		case map[string]any:
			keys := make([]any, 0, len(value))
			for k := range value {
				keys = append(keys, k)
			}

			return keys, true
		}
	}

	return nil, false
}

func parseDateList(list []any) ([]bell.Date, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: empty date list", bell.ErrInvalidSubmission)
	}

	dates := make([]bell.Date, 0, len(list))

	for _, raw := range list {
		value, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: date list entry has type %T", bell.ErrInvalidSubmission, raw)
		}

		date, err := parseDate(value, listDateLayouts)
		if err != nil {
			return nil, err
		}

		dates = append(dates, date)
	}

	slices.SortFunc(dates, bell.Date.Compare)

	return slices.Compact(dates), nil
}

func dateField(fields map[string]any, key string, layouts []string) (bell.Date, error) {
	value, err := stringField(fields, key)
	if err != nil {
		return bell.Date{}, err
	}

	return parseDate(value, layouts)
}

func parseDate(value string, layouts []string) (bell.Date, error) {
	value = strings.TrimSpace(value)

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return bell.DateOf(t), nil
		}
	}

	return bell.Date{}, fmt.Errorf("%w: unparsable date %q", bell.ErrInvalidSubmission, value)
}

func timeField(fields map[string]any, key string) (bell.TimeOfDay, error) {
	value, err := stringField(fields, key)
	if err != nil {
		return 0, err
	}

	t, err := bell.ParseTimeOfDay(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", bell.ErrInvalidSubmission, err)
	}

	return t, nil
}

func stringField(fields map[string]any, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %s is required", bell.ErrInvalidSubmission, key)
	}

	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", bell.ErrInvalidSubmission, key)
	}

	return value, nil
}

// intField accepts both "2" and 2, since JSON clients disagree.
func intField(fields map[string]any, key string) (int, error) {
	switch value := fields[key].(type) {
	case nil:
		return 0, fmt.Errorf("%w: %s is required", bell.ErrInvalidSubmission, key)
	case float64:
		if value != float64(int(value)) {
			return 0, fmt.Errorf("%w: %s must be an integer", bell.ErrInvalidSubmission, key)
		}

		return int(value), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", bell.ErrInvalidSubmission, key)
		}

		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s has type %T", bell.ErrInvalidSubmission, key, value)
	}
}
