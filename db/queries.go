package db

import (
	_ "embed"
)

// Schema

//go:embed sql/create_tables.sql
var CreateTablesSQL string

// Session queries

//go:embed sql/select_session.sql
var SelectSessionSQL string

//go:embed sql/upsert_session.sql
var UpsertSessionSQL string

//go:embed sql/delete_session.sql
var DeleteSessionSQL string

// Video queries

//go:embed sql/upsert_video.sql
var UpsertVideoSQL string

//go:embed sql/select_video_by_path.sql
var SelectVideoByPathSQL string

//go:embed sql/select_recent_videos.sql
var SelectRecentVideosSQL string
