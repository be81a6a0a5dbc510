package timetable

import "sort"

// DaysAttended counts the distinct weekdays touched by the union of all
// sessions of the given courses.
func DaysAttended(pool Pool, courseKeys []string) (int, error) {
	var days [NumWeekdays]bool
	for _, key := range courseKeys {
		course, err := pool.Lookup(key)
		if err != nil {
			return 0, err
		}
		for _, session := range course.Sessions {
			if session.Weekday.Valid() {
				days[session.Weekday] = true
			}
		}
	}
	count := 0
	for _, attended := range days {
		if attended {
			count++
		}
	}
	return count, nil
}

// IdleHours sums the gaps between consecutive sessions on each attended day,
// in hours. Days with fewer than two sessions contribute nothing. Negative
// gaps cannot occur in a conflict-free selection; they clamp to zero rather
// than corrupt the statistic.
func IdleHours(pool Pool, courseKeys []string) (float64, error) {
	daily := make(map[Weekday][][2]int)
	for _, key := range courseKeys {
		course, err := pool.Lookup(key)
		if err != nil {
			return 0, err
		}
		for _, session := range course.Sessions {
			daily[session.Weekday] = append(daily[session.Weekday], [2]int{session.Start, session.End})
		}
	}

	var idleMinutes float64
	for _, intervals := range daily {
		if len(intervals) < 2 {
			continue
		}
		sort.Slice(intervals, func(i, j int) bool {
			if intervals[i][0] != intervals[j][0] {
				return intervals[i][0] < intervals[j][0]
			}
			return intervals[i][1] < intervals[j][1]
		})
		for i := 0; i < len(intervals)-1; i++ {
			gap := intervals[i+1][0] - intervals[i][1]
			if gap > 0 {
				idleMinutes += float64(gap)
			}
		}
	}
	return idleMinutes / 60.0, nil
}
