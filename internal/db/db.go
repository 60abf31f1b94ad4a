/*
 * Copyright (c) 2026. SRAC Developers -- All Rights Reserved
 *
 * This file is part of SRAC project.
 *
 * SRAC is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as the Free Software Foundation,
 * either version 3 of the License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

// Package db persists the audit trail: accepted samples, boundary changes
// and small controller key/values that must survive a restart.
package db

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/sofclab/srac/internal/changelog"
	"github.com/sofclab/srac/internal/control"
	"github.com/sofclab/srac/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS controller (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS sample (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	taken_at         TIMESTAMP NOT NULL,
	h2_flow          REAL NOT NULL,
	air_flow         REAL NOT NULL,
	t2               REAL NOT NULL,
	tc3              REAL NOT NULL,
	tc1              REAL NOT NULL,
	anode_pressure   REAL NOT NULL,
	cathode_pressure REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS limit_change (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	changed_at TIMESTAMP NOT NULL,
	field      TEXT NOT NULL,
	old_value  REAL NOT NULL,
	new_value  REAL NOT NULL
);
`

type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the sqlite audit database. Failure to
// open is fatal: the controller refuses to run without its audit trail.
func Open(dbFile string) *Store {
	sqlDB, err := sqlx.Open("sqlite3", dbFile)
	if err != nil {
		logger.L().Panic(err)
	}

	if err := sqlDB.Ping(); err != nil {
		logger.L().Panicf("%s: %v", dbFile, err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		logger.L().Panic(err)
	}

	return &Store{db: sqlDB}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) UpsertControllerValue(name, value string) error {
	const query = `
		INSERT INTO controller(name, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT(name) DO UPDATE SET value=$2, updated_at=$3;`
	_, err := s.db.Exec(query, name, value, time.Now())
	return errors.Wrapf(err, "upsert controller value %q", name)
}

func (s *Store) GetControllerValue(name string) (string, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM controller WHERE name=$1;`, name)
	if err != nil {
		return "", errors.Wrapf(err, "get controller value %q", name)
	}
	return value, nil
}

func (s *Store) InsertSample(sample control.Sample) error {
	const query = `
		INSERT INTO sample(taken_at, h2_flow, air_flow, t2, tc3, tc1, anode_pressure, cathode_pressure)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := s.db.Exec(
		query, sample.Time, sample.H2Flow, sample.AirFlow,
		sample.T2, sample.TC3, sample.TC1,
		sample.AnodePressure, sample.CathodePressure,
	)
	return errors.Wrap(err, "insert sample")
}

func (s *Store) InsertLimitChange(change changelog.Change) error {
	const query = `
		INSERT INTO limit_change(changed_at, field, old_value, new_value)
		VALUES ($1, $2, $3, $4);`
	_, err := s.db.Exec(query, change.Time, change.Field, change.Old, change.New)
	return errors.Wrapf(err, "insert limit change %q", change.Field)
}
