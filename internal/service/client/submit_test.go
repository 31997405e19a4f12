package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/service/intake"
)

var now = time.Date(2024, time.March, 20, 9, 0, 0, 0, time.Local)

// TestFields_TranslateToIntakeLines ensures every builder yields a translatable submission.
func TestFields_TranslateToIntakeLines(t *testing.T) {
	t.Parallel()

	examRange, err := ExamFields("midsem", 2, "10:00:00", DateSelection{From: "20/03/2024", To: "21/03/2024"})
	require.NoError(t, err)

	examList, err := ExamFields("endsem", 1, "09:30:00", DateSelection{Dates: []string{"25/11/24", "21/11/24"}})
	require.NoError(t, err)

	tests := []struct {
		name     string
		fields   map[string]any
		expected []string
	}{
		{
			name:     "holiday",
			fields:   HolidayFields(DateSelection{Date: "15/08/2024"}),
			expected: []string{"0,15-08-2024"},
		},
		{
			name:     "holiday range",
			fields:   HolidayFields(DateSelection{From: "01/10/2024", To: "03/10/2024"}),
			expected: []string{"0,01-10-2024,03-10-2024"},
		},
		{
			name:     "exam range",
			fields:   examRange,
			expected: []string{"1,2,20-03-2024,21-03-2024,10:00:00"},
		},
		{
			name:     "exam list",
			fields:   examList,
			expected: []string{"2,1,21-11-2024,09:30:00", "2,1,25-11-2024,09:30:00"},
		},
		{
			name:     "emergency now",
			fields:   EmergencyFields(""),
			expected: []string{"3,09:00:00"},
		},
		{
			name:     "emergency at time",
			fields:   EmergencyFields("12:30:00"),
			expected: []string{"3,12:30:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lines, err := intake.Translate(tt.fields, now)
			require.NoError(t, err)
			require.Equal(t, tt.expected, lines)
		})
	}
}

// TestExamFields_UnknownKind rejects kinds other than midsem and endsem.
func TestExamFields_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := ExamFields("quiz", 1, "10:00:00", DateSelection{Date: "20/03/2024"})
	require.ErrorIs(t, err, bell.ErrInvalidSubmission)
}
