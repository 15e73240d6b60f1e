package refcalc

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// sqlStorage keeps the bound structure in a SQLite database. The schema
// mirrors the record types of the in-memory store; ordering columns carry
// the insertion order that fixes the physical stack.
type sqlStorage struct {
	db *sql.DB
}

const sqlSchema = `
CREATE TABLE IF NOT EXISTS materials (
    uid  TEXT PRIMARY KEY,
    real REAL NOT NULL DEFAULT 0,
    imag REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS layers (
    uid      TEXT PRIMARY KEY,
    thick    REAL NOT NULL DEFAULT 0,
    rough    REAL NOT NULL DEFAULT 0,
    material TEXT
);
CREATE TABLE IF NOT EXISTS items (
    uid       TEXT PRIMARY KEY,
    repeats   REAL NOT NULL DEFAULT 1,
    repeating INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS item_layers (
    item_uid  TEXT NOT NULL,
    layer_uid TEXT NOT NULL,
    position  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS model (
    uid   TEXT PRIMARY KEY,
    scale REAL NOT NULL DEFAULT 1,
    bkg   REAL NOT NULL DEFAULT 0,
    dq    REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS model_items (
    item_uid TEXT NOT NULL,
    position INTEGER NOT NULL
);
`

// newSQLStorage opens an in-memory SQLite database. The pool is pinned to a
// single connection because each new connection to :memory: would see a
// fresh, empty database.
func newSQLStorage() (*sqlStorage, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite storage: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqlSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialise sqlite schema: %w", err)
	}
	return &sqlStorage{db: db}, nil
}

// Column allowlists per table. Attribute names arrive from the binding layer
// and must never be interpolated into SQL unchecked.
var (
	sqlMaterialCols = map[string]bool{"real": true, "imag": true}
	sqlLayerCols    = map[string]bool{"thick": true, "rough": true}
	sqlItemCols     = map[string]bool{"repeats": true}
	sqlModelCols    = map[string]bool{"scale": true, "bkg": true, "dq": true}
)

func (s *sqlStorage) reset() {
	for _, table := range []string{"materials", "layers", "items", "item_layers", "model", "model_items"} {
		_, _ = s.db.Exec("DELETE FROM " + table)
	}
}

func (s *sqlStorage) createMaterial(uid string) error {
	_, err := s.db.Exec("INSERT INTO materials (uid) VALUES (?)", uid)
	if err != nil {
		return fmt.Errorf("create material %s: %w", uid, err)
	}
	return nil
}

func (s *sqlStorage) createLayer(uid string) error {
	_, err := s.db.Exec("INSERT INTO layers (uid) VALUES (?)", uid)
	if err != nil {
		return fmt.Errorf("create layer %s: %w", uid, err)
	}
	return nil
}

func (s *sqlStorage) createItem(uid string) error {
	_, err := s.db.Exec("INSERT INTO items (uid) VALUES (?)", uid)
	if err != nil {
		return fmt.Errorf("create item %s: %w", uid, err)
	}
	return nil
}

func (s *sqlStorage) createModel(uid string) error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM model").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("model already exists")
	}
	_, err := s.db.Exec("INSERT INTO model (uid) VALUES (?)", uid)
	if err != nil {
		return fmt.Errorf("create model %s: %w", uid, err)
	}
	return nil
}

func (s *sqlStorage) getValue(table, uid, attr string, cols map[string]bool) (float64, error) {
	if !cols[attr] {
		return 0, fmt.Errorf("%s attribute %q not supported", table, attr)
	}
	var value float64
	err := s.db.QueryRow("SELECT "+attr+" FROM "+table+" WHERE uid = ?", uid).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%s %s not found", table, uid)
	}
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (s *sqlStorage) setValue(table, uid, attr string, value float64, cols map[string]bool) error {
	if !cols[attr] {
		return fmt.Errorf("%s attribute %q not supported", table, attr)
	}
	res, err := s.db.Exec("UPDATE "+table+" SET "+attr+" = ? WHERE uid = ?", value, uid)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s not found", table, uid)
	}
	return nil
}

func (s *sqlStorage) getMaterial(uid, attr string) (float64, error) {
	return s.getValue("materials", uid, attr, sqlMaterialCols)
}

func (s *sqlStorage) setMaterial(uid, attr string, value float64) error {
	return s.setValue("materials", uid, attr, value, sqlMaterialCols)
}

func (s *sqlStorage) getLayer(uid, attr string) (float64, error) {
	return s.getValue("layers", uid, attr, sqlLayerCols)
}

func (s *sqlStorage) setLayer(uid, attr string, value float64) error {
	return s.setValue("layers", uid, attr, value, sqlLayerCols)
}

func (s *sqlStorage) getItem(uid, attr string) (float64, error) {
	return s.getValue("items", uid, attr, sqlItemCols)
}

func (s *sqlStorage) setItem(uid, attr string, value float64) error {
	if attr == "repeats" && value < 1 {
		return fmt.Errorf("item %s: repeats %g below 1", uid, value)
	}
	return s.setValue("items", uid, attr, value, sqlItemCols)
}

func (s *sqlStorage) getModel(uid, attr string) (float64, error) {
	return s.getValue("model", uid, attr, sqlModelCols)
}

func (s *sqlStorage) setModel(uid, attr string, value float64) error {
	return s.setValue("model", uid, attr, value, sqlModelCols)
}

func (s *sqlStorage) assignMaterial(materialUID, layerUID string) error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM materials WHERE uid = ?", materialUID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("material %s not found", materialUID)
	}
	res, err := s.db.Exec("UPDATE layers SET material = ? WHERE uid = ?", materialUID, layerUID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("layer %s not found", layerUID)
	}
	return nil
}

func (s *sqlStorage) addLayer(layerUID, itemUID string) error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM layers WHERE uid = ?", layerUID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("layer %s not found", layerUID)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM items WHERE uid = ?", itemUID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("item %s not found", itemUID)
	}
	_, err := s.db.Exec(
		"INSERT INTO item_layers (item_uid, layer_uid, position) "+
			"VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM item_layers WHERE item_uid = ?))",
		itemUID, layerUID, itemUID)
	return err
}

func (s *sqlStorage) removeLayer(layerUID, itemUID string) error {
	res, err := s.db.Exec(
		"DELETE FROM item_layers WHERE rowid = ("+
			"SELECT rowid FROM item_layers WHERE item_uid = ? AND layer_uid = ? ORDER BY position DESC LIMIT 1)",
		itemUID, layerUID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("layer %s not in item %s", layerUID, itemUID)
	}
	return nil
}

func (s *sqlStorage) addItem(itemUID string) error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM items WHERE uid = ?", itemUID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("item %s not found", itemUID)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM model").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no model created")
	}
	_, err := s.db.Exec(
		"INSERT INTO model_items (item_uid, position) "+
			"VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM model_items))",
		itemUID)
	return err
}

func (s *sqlStorage) removeItem(itemUID string) error {
	res, err := s.db.Exec(
		"DELETE FROM model_items WHERE rowid = ("+
			"SELECT rowid FROM model_items WHERE item_uid = ? ORDER BY position DESC LIMIT 1)",
		itemUID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("item %s not in model", itemUID)
	}
	return nil
}

func (s *sqlStorage) promoteItem(itemUID, oldUID string) error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM items WHERE uid = ?", oldUID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("item %s not found", oldUID)
	}
	if itemUID != oldUID {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM items WHERE uid = ?", itemUID).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("item %s already exists", itemUID)
		}
		if _, err := s.db.Exec("UPDATE items SET uid = ? WHERE uid = ?", itemUID, oldUID); err != nil {
			return err
		}
		if _, err := s.db.Exec("UPDATE item_layers SET item_uid = ? WHERE item_uid = ?", itemUID, oldUID); err != nil {
			return err
		}
		if _, err := s.db.Exec("UPDATE model_items SET item_uid = ? WHERE item_uid = ?", itemUID, oldUID); err != nil {
			return err
		}
	}
	_, err := s.db.Exec("UPDATE items SET repeating = 1 WHERE uid = ?", itemUID)
	return err
}

func (s *sqlStorage) layerOrder(itemUID string) ([]string, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM items WHERE uid = ?", itemUID).Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("item %s not found", itemUID)
	}
	rows, err := s.db.Query("SELECT layer_uid FROM item_layers WHERE item_uid = ? ORDER BY position", itemUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}

func (s *sqlStorage) slabs() ([]slab, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM model").Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("no model created")
	}
	rows, err := s.db.Query(`
SELECT i.repeats, i.repeating,
       l.thick, l.rough,
       COALESCE(m.real, 0), COALESCE(m.imag, 0),
       mi.position, il.position
  FROM model_items mi
  JOIN items i        ON i.uid = mi.item_uid
  JOIN item_layers il ON il.item_uid = i.uid
  JOIN layers l       ON l.uid = il.layer_uid
  LEFT JOIN materials m ON m.uid = l.material
 ORDER BY mi.position, il.position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type row struct {
		repeats   float64
		repeating bool
		sl        slab
		itemPos   int
	}
	var flat []row
	for rows.Next() {
		var r row
		var layerPos int
		if err := rows.Scan(&r.repeats, &r.repeating, &r.sl.thick, &r.sl.rough, &r.sl.real, &r.sl.imag, &r.itemPos, &layerPos); err != nil {
			return nil, err
		}
		flat = append(flat, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Expand repeating items run by run; rows arrive grouped by item
	// position, so each contiguous run of equal positions is one item.
	var out []slab
	for n := 0; n < len(flat); {
		end := n
		for end < len(flat) && flat[end].itemPos == flat[n].itemPos {
			end++
		}
		reps := 1
		if flat[n].repeating {
			reps = int(flat[n].repeats)
			if reps < 1 {
				reps = 1
			}
		}
		for rep := 0; rep < reps; rep++ {
			for j := n; j < end; j++ {
				out = append(out, flat[j].sl)
			}
		}
		n = end
	}
	return out, nil
}

func (s *sqlStorage) modelValues(uid string) (float64, float64, float64, error) {
	var scale, bkg, dq float64
	err := s.db.QueryRow("SELECT scale, bkg, dq FROM model WHERE uid = ?", uid).Scan(&scale, &bkg, &dq)
	if err == sql.ErrNoRows {
		return 0, 0, 0, fmt.Errorf("model %s not found", uid)
	}
	if err != nil {
		return 0, 0, 0, err
	}
	return scale, bkg, dq, nil
}

func (s *sqlStorage) anyModelValues() (float64, float64, float64, error) {
	var scale, bkg, dq float64
	err := s.db.QueryRow("SELECT scale, bkg, dq FROM model").Scan(&scale, &bkg, &dq)
	if err == sql.ErrNoRows {
		return 0, 0, 0, fmt.Errorf("no model created")
	}
	if err != nil {
		return 0, 0, 0, err
	}
	return scale, bkg, dq, nil
}
