package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"subsmith/internal/ipc"
	"subsmith/internal/queue"
)

// buildQueueStatusRows orders counts by the pipeline status sequence, with
// unknown statuses appended alphabetically.
func buildQueueStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(stats))
	seen := make(map[string]struct{}, len(stats))
	for _, status := range queue.AllStatuses() {
		count, ok := stats[string(status)]
		if !ok || count == 0 {
			continue
		}
		rows = append(rows, []string{formatStatusLabel(string(status)), strconv.Itoa(count)})
		seen[string(status)] = struct{}{}
	}

	extras := make([]string, 0)
	for status, count := range stats {
		if _, ok := seen[status]; ok || count == 0 {
			continue
		}
		extras = append(extras, status)
	}
	sort.Strings(extras)
	for _, status := range extras {
		rows = append(rows, []string{formatStatusLabel(status), strconv.Itoa(stats[status])})
	}
	return rows
}

func buildQueueListRows(jobs []ipc.QueueJob) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		progress := strings.TrimSpace(job.ProgressStage)
		if progress != "" && job.ProgressPercent > 0 {
			progress = fmt.Sprintf("%s (%.0f%%)", progress, job.ProgressPercent)
		}
		rows = append(rows, []string{
			strconv.FormatInt(job.ID, 10),
			job.SourceName,
			strconv.FormatInt(job.ChatID, 10),
			job.Language,
			formatStatusLabel(job.Status),
			progress,
			timeColumn(job.CreatedAt),
		})
	}
	return rows
}

func formatStatusLabel(status string) string {
	trimmed := strings.TrimSpace(status)
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

// timeColumn trims RFC3339 timestamps for table display.
func timeColumn(value string) string {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("2006-01-02 15:04")
}

func parsePositiveIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid job id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
