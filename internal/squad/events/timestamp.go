package events

import (
	"errors"
	"strings"
	"time"
)

// logTimestampFormat is the layout used by the dedicated server, eg: 2021.01.01-00.00.00:000. The
// millisecond separator is a colon which time.Parse does not understand, so it is swapped for a period
// before parsing.
const logTimestampFormat = "2006.01.02-15.04.05.000"

var ErrParseTimestamp = errors.New("failed to parse timestamp")

// ParseTimestamp will convert the source formatted log timestamps into a time.Time value. The server
// writes timestamps without any zone information, they are always treated as UTC.
func ParseTimestamp(timestamp string) (time.Time, error) {
	sep := strings.LastIndexByte(timestamp, ':')
	if sep < 0 {
		return time.Time{}, ErrParseTimestamp
	}

	parsedTime, errParse := time.ParseInLocation(logTimestampFormat, timestamp[:sep]+"."+timestamp[sep+1:], time.UTC)
	if errParse != nil {
		return time.Time{}, errors.Join(errParse, ErrParseTimestamp)
	}

	return parsedTime, nil
}

// FormatTimestamp renders a time in the same layout the server uses.
func FormatTimestamp(instant time.Time) string {
	formatted := instant.UTC().Format(logTimestampFormat)
	sep := strings.LastIndexByte(formatted, '.')

	return formatted[:sep] + ":" + formatted[sep+1:]
}
