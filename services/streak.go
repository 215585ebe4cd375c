package services

import (
	"InnerCompassGo/models"
	"math"
	"sort"
	"time"
)

const (
	weeklyWindow  = 7 * 24 * time.Hour
	monthlyWindow = 30 * 24 * time.Hour
)

// dayNumber 按 loc 取自然日，返回自 1970-01-01 起的天数，不受夏令时影响
func dayNumber(t time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// ComputeStreak 计算当前和最长连续记录天数，timestamps 顺序不限，晚于今天的记录忽略
func ComputeStreak(timestamps []time.Time, now time.Time, loc *time.Location) models.StreakState {
	today := dayNumber(now, loc)

	seen := make(map[int]bool, len(timestamps))
	days := make([]int, 0, len(timestamps))
	for _, ts := range timestamps {
		d := dayNumber(ts, loc)
		if d > today || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	if len(days) == 0 {
		return models.StreakState{}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))

	var state models.StreakState
	run := 1
	state.Longest = 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] == 1 {
			run++
		} else {
			run = 1
		}
		if run > state.Longest {
			state.Longest = run
		}
	}

	if today-days[0] <= 1 {
		state.Current = 1
		for i := 1; i < len(days) && days[i-1]-days[i] == 1; i++ {
			state.Current++
		}
	}
	return state
}

// GoalPercentage min(100, 100*count/target)，target 非正时为0
func GoalPercentage(count, target int) int {
	if target <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(count) / float64(target)))
	if pct > 100 {
		return 100
	}
	return pct
}

// ComputeGoalProgress 滚动7天和30天窗口内的记录数与目标完成度
func ComputeGoalProgress(timestamps []time.Time, now time.Time, weeklyTarget, monthlyTarget int) models.GoalProgress {
	progress := models.GoalProgress{
		WeeklyTarget:  weeklyTarget,
		MonthlyTarget: monthlyTarget,
	}
	for _, ts := range timestamps {
		age := now.Sub(ts)
		if age < 0 {
			continue
		}
		if age < weeklyWindow {
			progress.WeeklyCount++
		}
		if age < monthlyWindow {
			progress.MonthlyCount++
		}
	}
	progress.WeeklyPercentage = GoalPercentage(progress.WeeklyCount, weeklyTarget)
	progress.MonthlyPercentage = GoalPercentage(progress.MonthlyCount, monthlyTarget)
	return progress
}
