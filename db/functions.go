package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/clip-trimmer/session"
)

// LoadSession returns the persisted session, or the initial state when none is stored.
func LoadSession(db *sql.DB) (session.State, error) {
	var (
		path, name sql.NullString
		size       int64
		hasAudio   bool
		st         session.State
	)
	err := db.QueryRow(SelectSessionSQL).Scan(&path, &name, &size, &st.StartTime, &st.EndTime, &st.Duration, &hasAudio, &st.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Initial(), nil
	}
	if err != nil {
		return session.State{}, fmt.Errorf("select session: %w", err)
	}
	st.HasAudio = hasAudio
	if path.Valid && path.String != "" {
		st.Video = &session.Video{Path: path.String, Name: name.String, Size: size}
	}
	return st, nil
}

// SaveSession stores st as the single session row. The processing flag is not persisted.
func SaveSession(db *sql.DB, st session.State) error {
	var path, name sql.NullString
	var size int64
	if st.Video != nil {
		path = sql.NullString{String: st.Video.Path, Valid: true}
		name = sql.NullString{String: st.Video.Name, Valid: true}
		size = st.Video.Size
	}
	_, err := db.Exec(UpsertSessionSQL, path, name, size, st.StartTime, st.EndTime, st.Duration, st.HasAudio, st.Error, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// ClearSession removes the stored session.
func ClearSession(db *sql.DB) error {
	if _, err := db.Exec(DeleteSessionSQL); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RecordVideo upserts the videos row for path and returns its ID.
func RecordVideo(db *sql.DB, path string, filesize int64, duration float64, hasAudio bool) (int64, error) {
	base := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if _, err := db.Exec(UpsertVideoSQL, path, base, ext, filesize, duration, hasAudio, time.Now().Unix()); err != nil {
		return 0, fmt.Errorf("upsert video: %w", err)
	}
	v, err := SelectVideoByPath(db, path)
	if err != nil {
		return 0, err
	}
	return v.ID, nil
}

// SelectVideoByPath returns the videos row for path, or nil if it was never opened.
func SelectVideoByPath(db *sql.DB, path string) (*Video, error) {
	v, err := scanVideo(db.QueryRow(SelectVideoByPathSQL, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select video by path: %w", err)
	}
	return v, nil
}

// SelectRecentVideos returns up to limit videos, most recently opened first.
func SelectRecentVideos(db *sql.DB, limit int) ([]Video, error) {
	rows, err := db.Query(SelectRecentVideosSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("select recent videos: %w", err)
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*Video, error) {
	var v Video
	var openedAt int64
	if err := row.Scan(&v.ID, &v.Path, &v.Filename, &v.Extension, &v.Filesize, &v.Duration, &v.HasAudio, &openedAt); err != nil {
		return nil, err
	}
	v.OpenedAt = time.Unix(openedAt, 0)
	return &v, nil
}
