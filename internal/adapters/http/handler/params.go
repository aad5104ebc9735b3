package handler

import (
	"fmt"
	"strconv"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"
)

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s", raw, dateLayout)
	}
	return d, nil
}

// parseTimestamp は RFC3339 の完全なタイムスタンプ、または時刻のみ
// ("15:04:05") を受け付けます。時刻のみの場合は対象レコードの日付に
// 割り付けられるため、日付部分はゼロ値のままで構いません。
func parseTimestamp(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(clockLayout, raw); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q, expected RFC3339 or %s", raw, clockLayout)
}
