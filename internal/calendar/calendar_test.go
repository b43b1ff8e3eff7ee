package calendar

import (
	"testing"
	"time"
)

func TestMidnight(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "already midnight",
			in:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "late evening",
			in:   time.Date(2024, 3, 5, 23, 59, 59, 999, time.UTC),
			want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non-UTC input uses the UTC day",
			in:   time.Date(2024, 3, 5, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600)),
			want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Midnight(tt.in); !got.Equal(tt.want) {
				t.Errorf("Midnight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDayKeyStepsByWholeDays(t *testing.T) {
	start := time.Date(2023, 12, 30, 15, 0, 0, 0, time.UTC)
	prev := DayKey(start)
	for i := 1; i <= 400; i++ {
		key := DayKey(AddDays(start, i))
		if key-prev != 86400 {
			t.Fatalf("day %d: key step = %d, want 86400", i, key-prev)
		}
		if key%86400 != 0 {
			t.Fatalf("day %d: key %d is not midnight aligned", i, key)
		}
		prev = key
	}
}

func TestFromKeyRoundTrip(t *testing.T) {
	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	if got := FromKey(DayKey(day)); !got.Equal(day) {
		t.Errorf("FromKey(DayKey()) = %v, want %v", got, day)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.January, 31},
		{2024, time.February, 29},
		{2023, time.February, 28},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}

	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysInMonth(%d, %s) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{
			name: "plain step",
			in:   time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "clamps to leap february",
			in:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "clamps to short february",
			in:   time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC),
			n:    -1,
			want: time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "crosses year backwards",
			in:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			n:    -1,
			want: time.Date(2023, 12, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "crosses year forwards",
			in:   time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
			n:    2,
			want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddMonths(tt.in, tt.n); !got.Equal(tt.want) {
				t.Errorf("AddMonths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithDay(t *testing.T) {
	in := time.Date(2024, 3, 20, 8, 30, 0, 0, time.UTC)
	got := WithDay(in, 3)
	want := time.Date(2024, 3, 3, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WithDay() = %v, want %v", got, want)
	}
}

func TestKeyOfDay(t *testing.T) {
	ref := time.Date(2024, 2, 17, 12, 0, 0, 0, time.UTC)
	for day := 1; day <= 29; day++ {
		want := DayKey(time.Date(2024, 2, day, 0, 0, 0, 0, time.UTC))
		if got := KeyOfDay(ref, day); got != want {
			t.Errorf("KeyOfDay(%d) = %d, want %d", day, got, want)
		}
	}
}

func TestYearMonthComparisons(t *testing.T) {
	jan := time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)

	if !AfterByYearMonth(feb, jan) {
		t.Error("AfterByYearMonth(feb, jan) = false, want true")
	}
	if AfterByYearMonth(jan, jan) {
		t.Error("AfterByYearMonth(jan, jan) = true, want false")
	}
	if !BeforeByYearMonth(dec, jan) {
		t.Error("BeforeByYearMonth(dec, jan) = false, want true")
	}
	if !SameYearMonth(jan, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("SameYearMonth() = false for two January dates")
	}
}

func TestUntilNextDay(t *testing.T) {
	now := time.Date(2024, 3, 5, 22, 30, 0, 0, time.UTC)
	if got := UntilNextDay(now); got != 90*time.Minute {
		t.Errorf("UntilNextDay() = %v, want 1h30m", got)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if !got.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDate() = %v", got)
	}
	if _, err := ParseDate("2024/02/29"); err == nil {
		t.Error("ParseDate() accepted an invalid format")
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{90*time.Minute + 5*time.Second, "01:30:05"},
		{23*time.Hour + 59*time.Minute + 59*time.Second, "23:59:59"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.in); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
