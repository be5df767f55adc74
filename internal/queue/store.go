package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"slidecast/internal/config"
)

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the job database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// NewJob inserts a new job in pending state.
func (s *Store) NewJob(ctx context.Context, jobID string, params Params) (*Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, errors.New("job id required")
	}
	if strings.TrimSpace(params.URL) == "" {
		return nil, errors.New("url required")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	extraArgs, err := encodeStrings(params.ExtraDownloadArgs)
	if err != nil {
		return nil, fmt.Errorf("encode extra args: %w", err)
	}

	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO jobs (
            job_id, url, title, subtitle,
            similarity_threshold, min_interval_seconds, skip_first_seconds,
            fill_mode, image_format, image_quality,
            extra_download_args, file_pattern,
            status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		jobID,
		params.URL,
		nullableString(params.Title),
		nullableString(params.Subtitle),
		params.SimilarityThreshold,
		params.MinIntervalSeconds,
		params.SkipFirstSeconds,
		boolToInt(params.FillMode),
		params.ImageFormat,
		params.ImageQuality,
		extraArgs,
		nullableString(params.FilePattern),
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return s.GetByJobID(ctx, jobID)
}

// GetByJobID fetches a job by its identifier. Returns nil when absent.
func (s *Store) GetByJobID(ctx context.Context, jobID string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE job_id = ?`, jobID)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns jobs filtered by status set (or all jobs when no status is
// provided), in queue order: oldest created_at first, job_id as tie-break.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM jobs`
	orderClause := ` ORDER BY created_at, job_id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Pending returns all pending jobs in dispatch order.
func (s *Store) Pending(ctx context.Context) ([]*Job, error) {
	return s.List(ctx, StatusPending)
}

// Update persists changes to an existing job record.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()

	extraArgs, err := encodeStrings(job.Params.ExtraDownloadArgs)
	if err != nil {
		return fmt.Errorf("encode extra args: %w", err)
	}
	videoFiles, err := encodeStrings(job.VideoFiles)
	if err != nil {
		return fmt.Errorf("encode video files: %w", err)
	}
	command, err := encodeStrings(job.Command)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}

	_, err = s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET url = ?, title = ?, subtitle = ?,
             similarity_threshold = ?, min_interval_seconds = ?, skip_first_seconds = ?,
             fill_mode = ?, image_format = ?, image_quality = ?,
             extra_download_args = ?, file_pattern = ?,
             status = ?, job_dir = ?, screenshots_dir = ?, video_path = ?, video_files = ?,
             ppt_path = ?, slides_json_path = ?, slide_count = ?, command = ?,
             stdout = ?, stderr = ?, error_message = ?,
             video_duration_seconds = ?, fps = ?,
             updated_at = ?, started_at = ?, completed_at = ?
         WHERE job_id = ?`,
		job.Params.URL,
		nullableString(job.Params.Title),
		nullableString(job.Params.Subtitle),
		job.Params.SimilarityThreshold,
		job.Params.MinIntervalSeconds,
		job.Params.SkipFirstSeconds,
		boolToInt(job.Params.FillMode),
		job.Params.ImageFormat,
		job.Params.ImageQuality,
		extraArgs,
		nullableString(job.Params.FilePattern),
		job.Status,
		nullableString(job.JobDir),
		nullableString(job.ScreenshotsDir),
		nullableString(job.VideoPath),
		videoFiles,
		nullableString(job.PPTPath),
		nullableString(job.SlidesJSONPath),
		nullableInt(job.SlideCount),
		command,
		nullableString(job.Stdout),
		nullableString(job.Stderr),
		nullableString(job.ErrorMessage),
		nullableFloat(job.DurationSecs),
		nullableFloat(job.FPS),
		job.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(job.StartedAt),
		nullableTime(job.CompletedAt),
		job.JobID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// ClaimPending atomically transitions a pending job to running and records
// started_at. The boolean reports whether this caller won the transition; a
// false result with a nil error means the job was not in pending state.
func (s *Store) ClaimPending(ctx context.Context, jobID string) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, started_at = ?, completed_at = NULL, error_message = NULL, updated_at = ?
         WHERE job_id = ? AND status = ?`,
		StatusRunning,
		now,
		now,
		jobID,
		StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("claim pending job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ResetForReprocess re-arms a terminal job back to pending, clearing all
// output fields while preserving identity and input parameters. The boolean
// reports whether the job was in a terminal state and got reset.
func (s *Store) ResetForReprocess(ctx context.Context, jobID string) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, job_dir = NULL, screenshots_dir = NULL, video_path = NULL,
             video_files = NULL, ppt_path = NULL, slides_json_path = NULL,
             slide_count = NULL, command = NULL, stdout = NULL, stderr = NULL,
             error_message = NULL, video_duration_seconds = NULL, fps = NULL,
             started_at = NULL, completed_at = NULL, updated_at = ?
         WHERE job_id = ? AND status IN (?, ?)`,
		StatusPending,
		now,
		jobID,
		StatusCompleted,
		StatusFailed,
	)
	if err != nil {
		return false, fmt.Errorf("reset job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// FailInterrupted marks every job left running by an unclean shutdown as
// failed. Called once on startup before any new work is dispatched.
func (s *Store) FailInterrupted(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, error_message = ?, completed_at = ?, updated_at = ?
         WHERE status = ?`,
		StatusFailed,
		InterruptedRunMessage,
		now,
		now,
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("fail interrupted jobs: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}
