package database

// postgresSchema holds the persisted rating state and the historical game feed.
// Row ids preserve append order within a date.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS games (
	id            BIGINT PRIMARY KEY,
	league_id     BIGINT NOT NULL,
	season        INTEGER NOT NULL,
	date          TIMESTAMPTZ NOT NULL,
	home_team_id  BIGINT NOT NULL,
	away_team_id  BIGINT NOT NULL,
	ft_home       INTEGER,
	ft_away       INTEGER,
	ht_home       INTEGER,
	ht_away       INTEGER
);
CREATE INDEX IF NOT EXISTS idx_games_season ON games (season, league_id, date);
CREATE INDEX IF NOT EXISTS idx_games_date ON games (date);

CREATE TABLE IF NOT EXISTS team_ratings (
	id                BIGSERIAL PRIMARY KEY,
	team_id           BIGINT NOT NULL,
	league_id         BIGINT NOT NULL,
	rating            DOUBLE PRECISION NOT NULL,
	home_form_delta   DOUBLE PRECISION NOT NULL,
	away_form_delta   DOUBLE PRECISION NOT NULL,
	home_games_count  INTEGER NOT NULL,
	away_games_count  INTEGER NOT NULL,
	is_calibrating    BOOLEAN NOT NULL,
	date              TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_team_ratings_team_date ON team_ratings (team_id, date, id);

CREATE TABLE IF NOT EXISTS outcome_samples (
	id           BIGSERIAL PRIMARY KEY,
	ft_home      INTEGER NOT NULL,
	ft_away      INTEGER NOT NULL,
	ht_home      INTEGER NOT NULL,
	ht_away      INTEGER NOT NULL,
	points_diff  DOUBLE PRECISION NOT NULL,
	league_id    BIGINT NOT NULL,
	season       INTEGER NOT NULL,
	date         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outcome_samples_points_diff ON outcome_samples (points_diff);

CREATE TABLE IF NOT EXISTS league_margins (
	league_id           BIGINT PRIMARY KEY,
	starting_rating     DOUBLE PRECISION NOT NULL,
	expected_advantage  DOUBLE PRECISION NOT NULL,
	intercept           DOUBLE PRECISION NOT NULL,
	coef                DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS league_margin_by_sign (
	league_id        BIGINT NOT NULL REFERENCES league_margins (league_id),
	sign             TEXT NOT NULL,
	expected_margin  DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (league_id, sign)
);
`

// sqliteSchema mirrors postgresSchema with SQLite column types. Dates are
// stored as RFC 3339 text so lexical order matches chronological order.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS games (
	id            INTEGER PRIMARY KEY,
	league_id     INTEGER NOT NULL,
	season        INTEGER NOT NULL,
	date          TEXT NOT NULL,
	home_team_id  INTEGER NOT NULL,
	away_team_id  INTEGER NOT NULL,
	ft_home       INTEGER,
	ft_away       INTEGER,
	ht_home       INTEGER,
	ht_away       INTEGER
);
CREATE INDEX IF NOT EXISTS idx_games_season ON games (season, league_id, date);
CREATE INDEX IF NOT EXISTS idx_games_date ON games (date);

CREATE TABLE IF NOT EXISTS team_ratings (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	team_id           INTEGER NOT NULL,
	league_id         INTEGER NOT NULL,
	rating            REAL NOT NULL,
	home_form_delta   REAL NOT NULL,
	away_form_delta   REAL NOT NULL,
	home_games_count  INTEGER NOT NULL,
	away_games_count  INTEGER NOT NULL,
	is_calibrating    INTEGER NOT NULL,
	date              TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_team_ratings_team_date ON team_ratings (team_id, date, id);

CREATE TABLE IF NOT EXISTS outcome_samples (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	ft_home      INTEGER NOT NULL,
	ft_away      INTEGER NOT NULL,
	ht_home      INTEGER NOT NULL,
	ht_away      INTEGER NOT NULL,
	points_diff  REAL NOT NULL,
	league_id    INTEGER NOT NULL,
	season       INTEGER NOT NULL,
	date         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outcome_samples_points_diff ON outcome_samples (points_diff);

CREATE TABLE IF NOT EXISTS league_margins (
	league_id           INTEGER PRIMARY KEY,
	starting_rating     REAL NOT NULL,
	expected_advantage  REAL NOT NULL,
	intercept           REAL NOT NULL,
	coef                REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS league_margin_by_sign (
	league_id        INTEGER NOT NULL REFERENCES league_margins (league_id),
	sign             TEXT NOT NULL,
	expected_margin  REAL NOT NULL,
	PRIMARY KEY (league_id, sign)
);
`
