package bell

import (
	"strconv"
	"strings"
)

// MaxRangeDays is the longest date range a single record may cover.
const MaxRangeDays = 366

// ParseRecord parses one intake line. It never panics; every failure is a *ParseError.
//
// Accepted shapes:
//
//	0,date
//	0,startDate,endDate
//	1|2,slot,date,baseTime
//	1|2,slot,startDate,endDate,baseTime
//	3,baseTime
func ParseRecord(line string) (Record, error) {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return Record{}, malformed(raw, "empty line", nil)
	}

	fields := strings.Split(raw, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	kindValue, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, malformed(raw, "kind is not an integer", err)
	}

	kind := Kind(kindValue)

	switch kind {
	case KindHoliday:
		return parseHoliday(raw, fields)
	case KindMidSem, KindEndSem:
		return parseExam(raw, kind, fields)
	case KindImmediateRing:
		return parseImmediate(raw, fields)
	default:
		return Record{}, malformed(raw, "unknown kind "+fields[0], nil)
	}
}

func parseHoliday(raw string, fields []string) (Record, error) {
	if len(fields) != 2 && len(fields) != 3 {
		return Record{}, malformed(raw, "holiday expects 2 or 3 fields, got "+strconv.Itoa(len(fields)), nil)
	}

	start, end, err := parseRange(raw, fields[1:])
	if err != nil {
		return Record{}, err
	}

	return Record{
		Kind:  KindHoliday,
		Start: start,
		End:   end,
		Raw:   raw,
	}, nil
}

func parseExam(raw string, kind Kind, fields []string) (Record, error) {
	if len(fields) != 4 && len(fields) != 5 {
		return Record{}, malformed(raw, "exam slot expects 4 or 5 fields, got "+strconv.Itoa(len(fields)), nil)
	}

	slot, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, malformed(raw, "slot is not an integer", err)
	}

	if slot < MinSlot || slot > MaxSlot {
		return Record{}, malformed(raw, "slot "+fields[1]+" is out of range", nil)
	}

	last := len(fields) - 1

	start, end, perr := parseRange(raw, fields[2:last])
	if perr != nil {
		return Record{}, perr
	}

	baseTime, err := ParseTimeOfDay(fields[last])
	if err != nil {
		return Record{}, malformed(raw, "invalid base time", err)
	}

	return Record{
		Kind:     kind,
		Slot:     slot,
		Start:    start,
		End:      end,
		BaseTime: baseTime,
		Raw:      raw,
	}, nil
}

func parseImmediate(raw string, fields []string) (Record, error) {
	if len(fields) != 2 {
		return Record{}, malformed(raw, "immediate ring expects 2 fields, got "+strconv.Itoa(len(fields)), nil)
	}

	baseTime, err := ParseTimeOfDay(fields[1])
	if err != nil {
		return Record{}, malformed(raw, "invalid ring time", err)
	}

	return Record{
		Kind:     KindImmediateRing,
		BaseTime: baseTime,
		Raw:      raw,
	}, nil
}

// parseRange parses one date or a start/end pair.
func parseRange(raw string, tokens []string) (Date, Date, error) {
	start, err := ParseDate(tokens[0])
	if err != nil {
		return Date{}, Date{}, malformed(raw, "invalid date", err)
	}

	if len(tokens) == 1 {
		return start, start, nil
	}

	end, err := ParseDate(tokens[1])
	if err != nil {
		return Date{}, Date{}, malformed(raw, "invalid end date", err)
	}

	if end.Before(start) {
		return Date{}, Date{}, malformed(raw, "end date is before start date", nil)
	}

	if start.AddDays(MaxRangeDays - 1).Before(end) {
		return Date{}, Date{}, malformed(raw, "date range is longer than "+strconv.Itoa(MaxRangeDays)+" days", nil)
	}

	return start, end, nil
}
