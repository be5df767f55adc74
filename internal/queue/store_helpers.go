package queue

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const jobColumns = "id, job_id, url, title, subtitle, similarity_threshold, min_interval_seconds, " +
	"skip_first_seconds, fill_mode, image_format, image_quality, extra_download_args, file_pattern, " +
	"status, job_dir, screenshots_dir, video_path, video_files, ppt_path, slides_json_path, " +
	"slide_count, command, stdout, stderr, error_message, video_duration_seconds, fps, " +
	"created_at, updated_at, started_at, completed_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id           int64
		jobID        string
		url          string
		title        sql.NullString
		subtitle     sql.NullString
		similarity   float64
		minInterval  float64
		skipFirst    float64
		fillMode     int64
		imageFormat  string
		imageQuality int64
		extraArgs    sql.NullString
		filePattern  sql.NullString
		statusStr    string
		jobDir       sql.NullString
		screenshots  sql.NullString
		videoPath    sql.NullString
		videoFiles   sql.NullString
		pptPath      sql.NullString
		slidesJSON   sql.NullString
		slideCount   sql.NullInt64
		command      sql.NullString
		stdout       sql.NullString
		stderr       sql.NullString
		errorMessage sql.NullString
		durationSecs sql.NullFloat64
		fps          sql.NullFloat64
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		startedRaw   sql.NullString
		completedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&jobID,
		&url,
		&title,
		&subtitle,
		&similarity,
		&minInterval,
		&skipFirst,
		&fillMode,
		&imageFormat,
		&imageQuality,
		&extraArgs,
		&filePattern,
		&statusStr,
		&jobDir,
		&screenshots,
		&videoPath,
		&videoFiles,
		&pptPath,
		&slidesJSON,
		&slideCount,
		&command,
		&stdout,
		&stderr,
		&errorMessage,
		&durationSecs,
		&fps,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:    id,
		JobID: jobID,
		Params: Params{
			URL:                 url,
			Title:               title.String,
			Subtitle:            subtitle.String,
			SimilarityThreshold: similarity,
			MinIntervalSeconds:  minInterval,
			SkipFirstSeconds:    skipFirst,
			FillMode:            fillMode != 0,
			ImageFormat:         imageFormat,
			ImageQuality:        int(imageQuality),
			ExtraDownloadArgs:   decodeStrings(extraArgs.String),
			FilePattern:         filePattern.String,
		},
		Status:         Status(statusStr),
		JobDir:         jobDir.String,
		ScreenshotsDir: screenshots.String,
		VideoPath:      videoPath.String,
		VideoFiles:     decodeStrings(videoFiles.String),
		PPTPath:        pptPath.String,
		SlidesJSONPath: slidesJSON.String,
		Command:        decodeStrings(command.String),
		Stdout:         stdout.String,
		Stderr:         stderr.String,
		ErrorMessage:   errorMessage.String,
		DurationSecs:   durationSecs.Float64,
		FPS:            fps.Float64,
	}
	if slideCount.Valid {
		job.SlideCount = int(slideCount.Int64)
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			job.StartedAt = &started
		}
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			job.CompletedAt = &completed
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableFloat(value float64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func encodeStrings(values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func decodeStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
