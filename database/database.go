package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/danschewy/lexiform/config"
)

func Open(cfg config.Config) (db *sql.DB, err error) {
	// enforce foreign keys on every pooled connection
	dsn := cfg.DBUrl
	if strings.Contains(dsn, "?") {
		dsn += "&_fk=true"
	} else {
		dsn += "?_fk=true"
	}

	db, err = sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	return
}
