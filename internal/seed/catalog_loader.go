package seed

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// LoadDrugs ingests the CSV catalog into the drugs table, ignoring rows
// whose code already exists. Expected columns: name, generic_name, code,
// unit, reorder_level.
func LoadDrugs(db *sqlx.DB, csvPath string, log *zap.Logger) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Info("drug catalog not loaded", zap.String("path", csvPath), zap.Error(err))
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Warn("unable to read catalog header", zap.Error(err))
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Warn("unable to start catalog transaction", zap.Error(err))
		return
	}
	stmt, err := tx.Preparex(`INSERT INTO drugs (name, generic_name, code, unit, reorder_level) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (code) DO NOTHING`)
	if err != nil {
		log.Warn("unable to prepare catalog insert", zap.Error(err))
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("unable to read catalog row", zap.Error(err))
			continue
		}
		if len(record) < 4 {
			continue
		}
		name := strings.TrimSpace(record[0])
		generic := strings.TrimSpace(record[1])
		code := strings.TrimSpace(record[2])
		unit := strings.TrimSpace(record[3])

		if name == "" || unit == "" {
			continue
		}

		reorder := 0
		if len(record) > 4 {
			if n, err := strconv.Atoi(strings.TrimSpace(record[4])); err == nil {
				reorder = n
			}
		}

		var codeVal *string
		if code != "" {
			codeVal = &code
		}
		var genericVal *string
		if generic != "" {
			genericVal = &generic
		}

		if _, err := stmt.Exec(name, genericVal, codeVal, unit, reorder); err != nil {
			log.Warn("unable to insert drug", zap.String("name", name), zap.Error(err))
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Warn("unable to commit catalog seed", zap.Error(err))
	} else {
		log.Info("seeded drug catalog", zap.Int("rows", rows))
	}
}
