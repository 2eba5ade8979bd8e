// Package models defines the data structures that map to database tables.
// GORM uses these structs to generate SQL queries and map rows back to Go values; the
// schema itself is owned by the SQL migrations in internal/database/migrations.
//
// The data model represents a single domino tournament where:
//   - Players are registered once (roster capped, never deleted)
//   - Each Round seats players at four-person tables (Seat rows, positions A/B/C/D)
//   - Tables are scored either in aggregate (TableResult) or per player (PlayerRoundScore)
//   - PlayerAdjustment is a round-independent ledger of penalties and bonuses
//   - PlayerStats is derived: it is rebuilt from scratch on every recompute
package models

import "time"

// --- Enums ---

// Position is a seat at a table. A faces C and B faces D; A+C and B+D are partners.
type Position string

const (
	PositionA Position = "A"
	PositionB Position = "B"
	PositionC Position = "C"
	PositionD Position = "D"
)

// Positions lists the seats of a table in clockwise order.
var Positions = [4]Position{PositionA, PositionB, PositionC, PositionD}

// Valid reports whether p is one of A, B, C, D.
func (p Position) Valid() bool {
	switch p {
	case PositionA, PositionB, PositionC, PositionD:
		return true
	}
	return false
}

// Partnership returns the side this position plays for.
func (p Position) Partnership() Partnership {
	switch p {
	case PositionA, PositionC:
		return PartnershipAC
	case PositionB, PositionD:
		return PartnershipBD
	}
	return ""
}

// Partnership names one of the two sides at a table.
type Partnership string

const (
	PartnershipAC Partnership = "AC" // side 1
	PartnershipBD Partnership = "BD" // side 2
)

// Valid reports whether s is exactly "AC" or "BD".
func (s Partnership) Valid() bool {
	return s == PartnershipAC || s == PartnershipBD
}

// Includes reports whether pos plays for this partnership.
func (s Partnership) Includes(pos Position) bool {
	return pos.Partnership() == s
}

// TableState tracks whether a table has finished playing its round.
type TableState string

const (
	TableInProgress TableState = "in_progress"
	TableFinished   TableState = "finished"
)

// Valid reports whether s is a known table state.
func (s TableState) Valid() bool {
	return s == TableInProgress || s == TableFinished
}

// Winner is the outcome of an aggregate table result.
type Winner string

const (
	WinnerSide1 Winner = "side1" // partnership AC
	WinnerSide2 Winner = "side2" // partnership BD
	WinnerDraw  Winner = "draw"
)

// WinnerFor compares two side totals; strictly greater wins, equal is a draw.
func WinnerFor(side1, side2 int) Winner {
	switch {
	case side1 > side2:
		return WinnerSide1
	case side2 > side1:
		return WinnerSide2
	default:
		return WinnerDraw
	}
}

// Partnership maps the winning side onto its partnership; draws return "".
func (w Winner) Partnership() Partnership {
	switch w {
	case WinnerSide1:
		return PartnershipAC
	case WinnerSide2:
		return PartnershipBD
	}
	return ""
}

// --- Models ---

// Player is an immutable registration on the roster.
type Player struct {
	ID         int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"not null" json:"name"`
	Surname    string `gorm:"not null" json:"surname"`
	NationalID string `gorm:"column:national_id;not null" json:"national_id"`
	Phone      string `gorm:"not null" json:"phone"`
	Fee        int    `gorm:"not null" json:"fee"`
}

// FullName is "Name Surname".
func (p Player) FullName() string {
	return p.Name + " " + p.Surname
}

// Seat places one player at one position of one table in one round.
// Unique indexes: (round, table_no, position) and (round, player_id).
type Seat struct {
	ID       int      `gorm:"primaryKey;autoIncrement" json:"-"`
	Round    int      `gorm:"not null" json:"round"`
	TableNo  int      `gorm:"column:table_no;not null" json:"table"`
	Position Position `gorm:"not null" json:"position"`
	PlayerID int      `gorm:"not null" json:"player_id"`
	Player   *Player  `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
}

// TableStatus is the mutable play state of a table; one row per (round, table_no).
type TableStatus struct {
	ID      int        `gorm:"primaryKey;autoIncrement" json:"-"`
	Round   int        `gorm:"not null" json:"round"`
	TableNo int        `gorm:"column:table_no;not null" json:"table"`
	Status  TableState `gorm:"not null;default:'in_progress'" json:"status"`
}

// TableName pins the table name; GORM would pluralize to table_statuses.
func (TableStatus) TableName() string { return "table_status" }

// TableResult is the aggregate (legacy) result of a table.
type TableResult struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"-"`
	Round       int       `gorm:"not null" json:"round"`
	TableNo     int       `gorm:"column:table_no;not null" json:"table"`
	PointsSide1 int       `gorm:"column:points_side1;not null" json:"points_side1"`
	PointsSide2 int       `gorm:"column:points_side2;not null" json:"points_side2"`
	Winner      Winner    `gorm:"not null;default:'draw'" json:"winner"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PlayerRoundScore is one player's detailed result at one table.
// Unique indexes: (round, table_no, player_id) and (round, table_no, position).
type PlayerRoundScore struct {
	ID                 int         `gorm:"primaryKey;autoIncrement" json:"-"`
	Round              int         `gorm:"not null" json:"round"`
	TableNo            int         `gorm:"column:table_no;not null" json:"table"`
	PlayerID           int         `gorm:"not null" json:"player_id"`
	Position           Position    `gorm:"not null" json:"position"`
	BasePoints         int         `gorm:"not null" json:"base_points"`
	PenaltyPoints      int         `gorm:"not null" json:"penalty_points"`
	FinalPoints        int         `gorm:"not null" json:"final_points"`
	WinningPartnership Partnership `gorm:"column:winning_partnership;not null" json:"winning_partnership"`
	CreatedAt          time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

// Won reports whether the row's player sat on the winning partnership.
func (s PlayerRoundScore) Won() bool {
	return s.WinningPartnership.Includes(s.Position)
}

// PlayerAdjustment is an append-only ledger entry; negative deltas are penalties.
type PlayerAdjustment struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID    int       `gorm:"not null" json:"player_id"`
	DeltaPoints int       `gorm:"not null" json:"delta_points"`
	Reason      string    `gorm:"not null;default:''" json:"reason"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PlayerStats is the derived ranking row of a player.
type PlayerStats struct {
	PlayerID      int       `gorm:"primaryKey;autoIncrement:false" json:"player_id"`
	GamesWon      int       `gorm:"column:g;not null" json:"g"`
	Points        int       `gorm:"column:p;not null" json:"p"`
	Effectiveness int       `gorm:"column:e;not null" json:"e"`
	Rank          int       `gorm:"column:r;not null" json:"r"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName pins the table name; GORM would pluralize to player_stats anyway but the
// explicit name documents the migration contract.
func (PlayerStats) TableName() string { return "player_stats" }
