package paygate

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/iov-one/paygate/errors"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw      string
		wantTime UnixTime
		wantErr  *errors.Error
	}{
		"zero time as number": {
			raw:      "0",
			wantTime: 0,
		},
		"zero time as string": {
			raw:      `"1970-01-01T01:00:00+01:00"`,
			wantTime: 0,
		},
		"a time as string": {
			raw:      `"2019-04-04T11:35:40.89181085+02:00"`,
			wantTime: 1554370540,
		},
		"a time as number": {
			raw:      "1554370540",
			wantTime: 1554370540,
		},
		"negative number": {
			raw:     "-1",
			wantErr: errors.ErrInput,
		},
		"negative time as string": {
			raw:     `"1950-01-01T01:00:00+01:00"`,
			wantErr: errors.ErrInput,
		},
		"invalid string": {
			raw:     `"not a time string"`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.wantTime {
				t.Fatalf("want %d time, got %d", tc.wantTime, got)
			}
		})
	}
}

func TestUnixTimeAdd(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour + 4*time.Second)

	unow := AsUnixTime(now)
	ufuture := unow.Add(time.Hour + 4*time.Second)

	if future.Unix() != int64(ufuture) {
		t.Fatalf("want %d, got %d", future.Unix(), ufuture)
	}
}

func TestUnixTimeAddDuration(t *testing.T) {
	got, err := UnixTime(100).AddDuration(11)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != 111 {
		t.Fatalf("want 111, got %d", got)
	}

	if _, err := UnixTime(math.MaxInt64 - 1).AddDuration(2); !errors.ErrOverflow.Is(err) {
		t.Fatalf("want overflow, got %v", err)
	}
}

func TestUnixDurationUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    UnixDuration
		wantErr *errors.Error
	}{
		"seconds as number": {
			raw:  "100",
			want: 100,
		},
		"human readable string": {
			raw:  `"2m5s"`,
			want: 125,
		},
		"invalid string": {
			raw:     `"ten minutes"`,
			wantErr: errors.ErrInput,
		},
		"invalid type": {
			raw:     `{}`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixDuration
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}
