package holidays

import (
	"database/sql"
	"log"
	"sync"
	"time"
)

// Service caches each region/year's holiday table in the database, falling
// back to the fixed-rule provider on a miss.
type Service struct {
	db        *sql.DB
	mux       sync.RWMutex
	memoCache map[string][]Holiday // key: "region:year"
}

// NewService wraps db, creating the holidays table if it does not exist.
func NewService(db *sql.DB) (*Service, error) {
	s := &Service{db: db, memoCache: make(map[string][]Holiday)}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS holidays (
			region TEXT NOT NULL,
			year   INTEGER NOT NULL,
			date   TEXT NOT NULL,
			name   TEXT NOT NULL,
			PRIMARY KEY (region, year, date)
		)`); err != nil {
		return nil, err
	}
	return s, nil
}

// Holidays implements calendarx.HolidayLookup: it loads region/year from the
// database cache, computing and persisting it via GetHolidays on a miss.
func (s *Service) Holidays(region string, year int) ([]time.Time, error) {
	key := cacheKey(region, year)

	s.mux.RLock()
	if hs, ok := s.memoCache[key]; ok {
		s.mux.RUnlock()
		return toDates(hs), nil
	}
	s.mux.RUnlock()

	dbHolidays, err := s.loadFromDatabase(region, year)
	if err != nil {
		return nil, err
	}
	if len(dbHolidays) > 0 {
		s.storeMemo(key, dbHolidays)
		return toDates(dbHolidays), nil
	}

	computed, err := GetHolidays(region, year)
	if err != nil {
		return nil, err
	}
	if err := s.saveToDatabase(region, year, computed); err != nil {
		log.Printf("holidays: failed to persist %s/%d: %v", region, year, err)
	}
	s.storeMemo(key, computed)
	return toDates(computed), nil
}

func (s *Service) storeMemo(key string, hs []Holiday) {
	s.mux.Lock()
	s.memoCache[key] = hs
	s.mux.Unlock()
}

func (s *Service) loadFromDatabase(region string, year int) ([]Holiday, error) {
	rows, err := s.db.Query(`SELECT date, name FROM holidays WHERE region = ? AND year = ?`, region, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var dateStr, name string
		if err := rows.Scan(&dateStr, &name); err != nil {
			return nil, err
		}
		d, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		out = append(out, Holiday{Date: d, Name: name})
	}
	return out, rows.Err()
}

func (s *Service) saveToDatabase(region string, year int, hs []Holiday) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO holidays (region, year, date, name) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, h := range hs {
		if _, err := stmt.Exec(region, year, h.Date.Format("2006-01-02"), h.Name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func cacheKey(region string, year int) string {
	return region + ":" + time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}

func toDates(hs []Holiday) []time.Time {
	out := make([]time.Time, len(hs))
	for i, h := range hs {
		out[i] = h.Date
	}
	return out
}
