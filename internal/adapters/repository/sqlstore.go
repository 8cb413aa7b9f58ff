package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // registers the "sqlite" database/sql driver

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/pkg/metrics"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultMaxOpenConns = 8
	defaultBusyTimeout  = 5 * time.Second
	openPingTimeout     = 10 * time.Second
)

// timeLayout is a fixed-width UTC timestamp format. The constant
// fraction width keeps stored timestamps lexicographically sortable,
// which the recorded_at ordering and window filters rely on.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

//go:embed schema.sql
var schema string

// skillOrder fixes the mapping between model skills and the six skill
// columns. It must match the column order in resultColumns and in the
// insert statement.
var skillOrder = []model.Skill{
	model.SkillAccuracy,
	model.SkillSpeed,
	model.SkillTechnique,
	model.SkillConsistency,
	model.SkillPower,
	model.SkillEndurance,
}

const resultColumns = `id, user_id, session_id, location_id, game_type,
	final_score, max_score,
	skill_accuracy, skill_speed, skill_technique,
	skill_consistency, skill_power, skill_endurance,
	duration_seconds, recorded_at, status,
	coach_id, feedback, dispute_reason,
	weather, equipment, created_at, updated_at`

const statsColumns = `user_id, total_games, total_wins, overall_average,
	skill_averages, current_streak, longest_streak, performance_level,
	by_game_type, by_location, last_result_at, updated_at, version`

// SQLStore is a Store backed by database/sql. It runs on embedded
// sqlite by default and on postgres through the pgx stdlib driver;
// both share one code path with ? placeholders rebound for postgres.
type SQLStore struct {
	db           *sql.DB
	driver       string
	maxOpenConns int
	busyTimeout  time.Duration
}

// Open connects to the configured backend and bootstraps the schema.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	s := &SQLStore{
		driver:       driver,
		maxOpenConns: defaultMaxOpenConns,
		busyTimeout:  defaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	switch driver {
	case DriverSQLite:
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// modernc's sqlite rejects concurrent writers, so the pool is
		// pinned to a single connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		s.db = db
		pragmas := fmt.Sprintf(
			"PRAGMA journal_mode = WAL; PRAGMA foreign_keys = ON; PRAGMA busy_timeout = %d;",
			s.busyTimeout.Milliseconds(),
		)
		if _, err := db.ExecContext(ctx, pragmas); err != nil {
			db.Close() //nolint:errcheck,gosec // already failing
			return nil, fmt.Errorf("set sqlite pragmas: %w", err)
		}
	case DriverPostgres:
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(s.maxOpenConns)
		db.SetMaxIdleConns(s.maxOpenConns)
		s.db = db
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, openPingTimeout)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		s.db.Close() //nolint:errcheck,gosec // already failing
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Statements run one at a time: pgx's extended protocol rejects
	// multi-statement strings.
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.db.Close() //nolint:errcheck,gosec // already failing
			return nil, fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return s, nil
}

// Ping verifies the backing database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Close releases the underlying database handles.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders into the $n form postgres expects.
// The sqlite backend takes queries as written.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// InsertResult appends a new result. A second result for the same
// (user, session) pair fails with ErrDuplicateSession.
func (s *SQLStore) InsertResult(ctx context.Context, r *model.GameResult) error {
	weather, err := encodeMeta(r.Weather)
	if err != nil {
		return fmt.Errorf("encode weather: %w", err)
	}
	equipment, err := encodeMeta(r.Equipment)
	if err != nil {
		return fmt.Errorf("encode equipment: %w", err)
	}

	args := []any{
		r.ID, r.UserID, r.SessionID, r.LocationID, string(r.GameType),
		r.FinalScore, r.MaxScore,
	}
	for _, skill := range skillOrder {
		args = append(args, skillArg(r.SkillScores, skill))
	}
	args = append(args,
		r.DurationSeconds, formatTime(r.RecordedAt), string(r.Status),
		r.CoachID, r.Feedback, r.DisputeReason,
		weather, equipment, formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)

	start := time.Now()
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO game_results (`+resultColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		args...,
	)
	metrics.RecordStoreExecLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s session %s", ErrDuplicateSession, r.UserID, r.SessionID)
		}
		metrics.RecordStoreError()
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// GetResult returns one result by id, or model.ErrNotFound.
func (s *SQLStore) GetResult(ctx context.Context, id string) (*model.GameResult, error) {
	start := time.Now()
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+resultColumns+` FROM game_results WHERE id = ?`), id)
	r, err := scanResult(row)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: result %s", model.ErrNotFound, id)
		}
		metrics.RecordStoreError()
		return nil, fmt.Errorf("get result: %w", err)
	}
	return r, nil
}

// GetBySession returns the result stored for a (user, session) pair,
// or model.ErrNotFound.
func (s *SQLStore) GetBySession(ctx context.Context, userID, sessionID string) (*model.GameResult, error) {
	start := time.Now()
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+resultColumns+` FROM game_results WHERE user_id = ? AND session_id = ?`),
		userID, sessionID)
	r, err := scanResult(row)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s session %s", model.ErrNotFound, userID, sessionID)
		}
		metrics.RecordStoreError()
		return nil, fmt.Errorf("get result by session: %w", err)
	}
	return r, nil
}

// UpdateResult persists the mutable fields of an existing result.
func (s *SQLStore) UpdateResult(ctx context.Context, r *model.GameResult) error {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE game_results
		SET status = ?, coach_id = ?, feedback = ?, dispute_reason = ?, updated_at = ?
		WHERE id = ?`),
		string(r.Status), r.CoachID, r.Feedback, r.DisputeReason,
		formatTime(r.UpdatedAt), r.ID,
	)
	metrics.RecordStoreExecLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("update result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: result %s", model.ErrNotFound, r.ID)
	}
	return nil
}

// ListResults returns matching results newest first, plus the total
// match count independent of paging.
func (s *SQLStore) ListResults(ctx context.Context, f ResultFilter) ([]model.GameResult, int, error) {
	where, args := buildResultWhere(f)

	var total int
	start := time.Now()
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(*) FROM game_results`+where), args...).Scan(&total)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return nil, 0, fmt.Errorf("count results: %w", err)
	}

	query := `SELECT ` + resultColumns + ` FROM game_results` + where +
		` ORDER BY recorded_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, f.Offset)
		}
	}
	out, err := s.queryResults(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListUserResults returns every result for one player, oldest first.
func (s *SQLStore) ListUserResults(ctx context.Context, userID string) ([]model.GameResult, error) {
	return s.queryResults(ctx,
		`SELECT `+resultColumns+` FROM game_results WHERE user_id = ?
		ORDER BY recorded_at ASC, id ASC`, userID)
}

// ListVerifiedSince returns verified results recorded at or after
// since, oldest first. A zero since returns all verified results.
func (s *SQLStore) ListVerifiedSince(ctx context.Context, since time.Time) ([]model.GameResult, error) {
	query := `SELECT ` + resultColumns + ` FROM game_results WHERE status = ?`
	args := []any{string(model.StatusVerified)}
	if !since.IsZero() {
		query += ` AND recorded_at >= ?`
		args = append(args, formatTime(since))
	}
	query += ` ORDER BY recorded_at ASC, id ASC`
	return s.queryResults(ctx, query, args...)
}

// LastTransitionAt returns the time of the user's most recent result
// status transition, or the zero time when none has happened. Inserts
// land pending, so any non-pending row marks a transition.
func (s *SQLStore) LastTransitionAt(ctx context.Context, userID string) (time.Time, error) {
	var latest sql.NullString
	start := time.Now()
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT MAX(updated_at) FROM game_results WHERE user_id = ? AND status != ?`),
		userID, string(model.StatusPending)).Scan(&latest)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return time.Time{}, fmt.Errorf("last transition: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	t, err := parseTime(latest.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last transition: %w", err)
	}
	return t, nil
}

// GetStatistics returns a player's rollup, or model.ErrNotFound.
func (s *SQLStore) GetStatistics(ctx context.Context, userID string) (*model.PlayerStatistics, error) {
	start := time.Now()
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+statsColumns+` FROM player_statistics WHERE user_id = ?`), userID)
	st, err := scanStatistics(row)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: statistics for user %s", model.ErrNotFound, userID)
		}
		metrics.RecordStoreError()
		return nil, fmt.Errorf("get statistics: %w", err)
	}
	return st, nil
}

// SaveStatistics inserts or updates a rollup guarded by its version.
// A stale version fails with model.ErrConflict; on success the
// rollup's Version is advanced to the stored value.
func (s *SQLStore) SaveStatistics(ctx context.Context, st *model.PlayerStatistics) error {
	skillAverages, err := encodeJSON(st.SkillAverages)
	if err != nil {
		return fmt.Errorf("encode skill averages: %w", err)
	}
	byGameType, err := encodeJSON(st.ByGameType)
	if err != nil {
		return fmt.Errorf("encode game type stats: %w", err)
	}
	byLocation, err := encodeJSON(st.ByLocation)
	if err != nil {
		return fmt.Errorf("encode location stats: %w", err)
	}

	if st.Version == 0 {
		start := time.Now()
		_, err := s.db.ExecContext(ctx, s.rebind(`
			INSERT INTO player_statistics (`+statsColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			st.UserID, st.TotalGames, st.TotalWins, st.OverallAverage,
			skillAverages, st.CurrentStreak, st.LongestStreak, string(st.PerformanceLevel),
			byGameType, byLocation, formatTime(st.LastResultAt), formatTime(st.UpdatedAt),
			int64(1),
		)
		metrics.RecordStoreExecLatency(float64(time.Since(start).Milliseconds()))
		if err != nil {
			if isUniqueViolation(err) {
				// Another writer created the row first.
				return fmt.Errorf("%w: statistics for user %s", model.ErrConflict, st.UserID)
			}
			metrics.RecordStoreError()
			return fmt.Errorf("insert statistics: %w", err)
		}
		st.Version = 1
		return nil
	}

	start := time.Now()
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE player_statistics
		SET total_games = ?, total_wins = ?, overall_average = ?,
			skill_averages = ?, current_streak = ?, longest_streak = ?,
			performance_level = ?, by_game_type = ?, by_location = ?,
			last_result_at = ?, updated_at = ?, version = version + 1
		WHERE user_id = ? AND version = ?`),
		st.TotalGames, st.TotalWins, st.OverallAverage,
		skillAverages, st.CurrentStreak, st.LongestStreak,
		string(st.PerformanceLevel), byGameType, byLocation,
		formatTime(st.LastResultAt), formatTime(st.UpdatedAt),
		st.UserID, st.Version,
	)
	metrics.RecordStoreExecLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("update statistics: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("update statistics: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: statistics for user %s at version %d",
			model.ErrConflict, st.UserID, st.Version)
	}
	st.Version++
	return nil
}

// ListStatistics returns every stored rollup ordered by user id.
func (s *SQLStore) ListStatistics(ctx context.Context) ([]model.PlayerStatistics, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+statsColumns+` FROM player_statistics ORDER BY user_id ASC`)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var out []model.PlayerStatistics
	for rows.Next() {
		st, err := scanStatistics(rows)
		if err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("list statistics: %w", err)
		}
		out = append(out, *st)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	return out, nil
}

func (s *SQLStore) queryResults(ctx context.Context, query string, args ...any) ([]model.GameResult, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var out []model.GameResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*model.GameResult, error) {
	var (
		r                   model.GameResult
		gameType, status    string
		skills              [6]sql.NullFloat64
		recordedAt          string
		createdAt, updatedAt string
		weather, equipment  string
	)
	err := row.Scan(
		&r.ID, &r.UserID, &r.SessionID, &r.LocationID, &gameType,
		&r.FinalScore, &r.MaxScore,
		&skills[0], &skills[1], &skills[2], &skills[3], &skills[4], &skills[5],
		&r.DurationSeconds, &recordedAt, &status,
		&r.CoachID, &r.Feedback, &r.DisputeReason,
		&weather, &equipment, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.GameType = model.GameType(gameType)
	r.Status = model.ResultStatus(status)
	for i, skill := range skillOrder {
		if skills[i].Valid {
			if r.SkillScores == nil {
				r.SkillScores = make(map[model.Skill]float64, len(skillOrder))
			}
			r.SkillScores[skill] = skills[i].Float64
		}
	}
	if r.Weather, err = decodeMeta(weather); err != nil {
		return nil, fmt.Errorf("decode weather: %w", err)
	}
	if r.Equipment, err = decodeMeta(equipment); err != nil {
		return nil, fmt.Errorf("decode equipment: %w", err)
	}
	if r.RecordedAt, err = parseTime(recordedAt); err != nil {
		return nil, fmt.Errorf("parse recorded_at: %w", err)
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &r, nil
}

func scanStatistics(row rowScanner) (*model.PlayerStatistics, error) {
	var (
		userID                              string
		skillAverages, byGameType, byLocation string
		level                               string
		lastResultAt, updatedAt             string
	)
	st := &model.PlayerStatistics{}
	err := row.Scan(
		&userID, &st.TotalGames, &st.TotalWins, &st.OverallAverage,
		&skillAverages, &st.CurrentStreak, &st.LongestStreak, &level,
		&byGameType, &byLocation, &lastResultAt, &updatedAt, &st.Version,
	)
	if err != nil {
		return nil, err
	}

	st.UserID = userID
	st.PerformanceLevel = model.PerformanceLevel(level)
	st.SkillAverages = make(map[model.Skill]float64)
	st.ByGameType = make(map[model.GameType]model.GroupStats)
	st.ByLocation = make(map[string]model.GroupStats)
	if err := decodeJSON(skillAverages, &st.SkillAverages); err != nil {
		return nil, fmt.Errorf("decode skill averages: %w", err)
	}
	if err := decodeJSON(byGameType, &st.ByGameType); err != nil {
		return nil, fmt.Errorf("decode game type stats: %w", err)
	}
	if err := decodeJSON(byLocation, &st.ByLocation); err != nil {
		return nil, fmt.Errorf("decode location stats: %w", err)
	}
	if st.LastResultAt, err = parseTime(lastResultAt); err != nil {
		return nil, fmt.Errorf("parse last_result_at: %w", err)
	}
	if st.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return st, nil
}

func buildResultWhere(f ResultFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.LocationID != "" {
		conds = append(conds, "location_id = ?")
		args = append(args, f.LocationID)
	}
	if f.GameType != "" {
		conds = append(conds, "game_type = ?")
		args = append(args, string(f.GameType))
	}
	switch {
	case len(f.Statuses) > 0:
		ph := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			ph[i] = "?"
			args = append(args, string(st))
		}
		conds = append(conds, "status IN ("+strings.Join(ph, ", ")+")")
	case f.Status != "":
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if !f.From.IsZero() {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, formatTime(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, formatTime(f.To))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// skillArg maps an absent skill to NULL.
func skillArg(scores map[model.Skill]float64, skill model.Skill) any {
	if v, ok := scores[skill]; ok {
		return v
	}
	return nil
}

// isUniqueViolation recognizes the duplicate-key failure of both
// backends: pgx surfaces SQLSTATE 23505, modernc's sqlite reports a
// UNIQUE constraint message.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// formatTime stores timestamps as fixed-width UTC strings. The zero
// time maps to the empty string.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// encodeMeta serializes a result metadata map. Empty maps collapse to
// the empty string so the round trip preserves nil.
func encodeMeta(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMeta(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// encodeJSON serializes a rollup column, mapping nil to the empty
// object so loaded rollups always carry non-nil maps.
func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return "{}", nil
	}
	return string(b), nil
}

func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}
