package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ID        int64          `db:"id"`
	Name      string         `db:"name"`
	Key       string         `db:"norm_key"`
	Kind      string         `db:"kind"`
	SourceURL sql.NullString `db:"source_url"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type competitionTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Key       string    `db:"norm_key"`
	Level     string    `db:"level"`
	Gender    string    `db:"gender"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type seasonTableModel struct {
	ID         int64     `db:"id"`
	Label      string    `db:"label"`
	StartYear  int       `db:"start_year"`
	EndYear    int       `db:"end_year"`
	ClubTeamID int64     `db:"club_team_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type personTableModel struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Key         string         `db:"norm_key"`
	BirthDate   sql.NullTime   `db:"birth_date"`
	BirthPlace  sql.NullString `db:"birth_place"`
	HeightCM    sql.NullInt64  `db:"height_cm"`
	WeightKG    sql.NullInt64  `db:"weight_kg"`
	Position    sql.NullString `db:"position"`
	Nationality sql.NullString `db:"nationality"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}
