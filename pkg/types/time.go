// Copyright (C) 2025 beam-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/beam-project/beamq/pkg/errors"
)

// Timestamp sentinels. The zero time.Time represents not-a-date-time.
var (
	// NegInfTime sorts before every representable timestamp.
	NegInfTime = time.Date(-9999, time.January, 1, 0, 0, 0, 0, time.UTC)
	// PosInfTime sorts after every representable timestamp.
	PosInfTime = time.Date(9999, time.December, 31, 23, 59, 59, 999999000, time.UTC)
)

// Duration sentinels.
const (
	// PosInfDuration is the positive infinite duration.
	PosInfDuration = time.Duration(math.MaxInt64)
	// NegInfDuration is the negative infinite duration.
	NegInfDuration = time.Duration(math.MinInt64)
)

const timestampLayout = "2006-01-02T15:04:05.999999"

// FormatTimestamp renders a timestamp as an ISO-8601 extended string. The
// sentinels render as "+infinity", "-infinity" and "not-a-date-time".
func FormatTimestamp(t time.Time) string {
	switch {
	case t.IsZero():
		return "not-a-date-time"
	case t.Equal(PosInfTime) || t.After(PosInfTime):
		return "+infinity"
	case t.Equal(NegInfTime) || t.Before(NegInfTime):
		return "-infinity"
	}
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses an ISO-8601 extended string produced by
// FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	switch s {
	case "not-a-date-time":
		return time.Time{}, nil
	case "+infinity":
		return PosInfTime, nil
	case "-infinity":
		return NegInfTime, nil
	}
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, errors.ErrSerialization.Wrap(err).
			WithMessage("invalid timestamp")
	}
	return t, nil
}

// FormatDuration renders a duration as HH:MM:SS.ffffff with the sentinels
// "+infinity" and "-infinity".
func FormatDuration(d time.Duration) string {
	switch d {
	case PosInfDuration:
		return "+infinity"
	case NegInfDuration:
		return "-infinity"
	}
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	micros := d / time.Microsecond
	return fmt.Sprintf(
		"%s%02d:%02d:%02d.%06d", sign, hours, minutes, seconds, micros)
}

// ParseDuration parses a string produced by FormatDuration.
func ParseDuration(s string) (time.Duration, error) {
	switch s {
	case "+infinity":
		return PosInfDuration, nil
	case "-infinity":
		return NegInfDuration, nil
	}
	invalid := errors.ErrSerialization.WithDetail("duration", s).
		WithMessage("invalid duration")
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, invalid
	}
	secondParts := strings.SplitN(parts[2], ".", 2)
	fraction := "0"
	if len(secondParts) == 2 {
		fraction = secondParts[1]
	}
	for len(fraction) < 6 {
		fraction += "0"
	}
	hours, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, invalid
	}
	minutes, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, invalid
	}
	seconds, err := strconv.ParseInt(secondParts[0], 10, 64)
	if err != nil {
		return 0, invalid
	}
	micros, err := strconv.ParseInt(fraction[:6], 10, 64)
	if err != nil {
		return 0, invalid
	}
	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(micros)*time.Microsecond
	if negative {
		d = -d
	}
	return d, nil
}
