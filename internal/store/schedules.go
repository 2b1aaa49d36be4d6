package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"vigil/internal/model"
)

// GetSchedule loads a schedule by id.
func (db *DB) GetSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	var s model.Schedule
	err := db.GetDocument(ctx, id, &s)
	if errors.Is(err, ErrNotFound) {
		return nil, model.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSchedules returns all schedules ordered by start date. The reserved
// config documents carry an empty order key and are skipped.
func (db *DB) ListSchedules(ctx context.Context) ([]model.Schedule, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT data FROM documents
		WHERE collection = ? AND order_key != ''
		ORDER BY order_key`,
		db.collection,
	)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var schedules []model.Schedule
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, storeErr(err)
		}
		var s model.Schedule
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return nil, storeErr(err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return schedules, nil
}

// SaveSchedule writes the full schedule document, keyed for start-date
// ordering.
func (db *DB) SaveSchedule(ctx context.Context, s *model.Schedule) error {
	return db.SetDocument(ctx, s.ID, s, false, s.StartDate.Format(model.DayFormat))
}

// MergeSchedule writes a partial update of the named top-level fields,
// leaving the rest of the document intact.
func (db *DB) MergeSchedule(ctx context.Context, id string, fields map[string]any) error {
	return db.SetDocument(ctx, id, fields, true, "")
}

// DeleteSchedule removes a schedule permanently. Idempotent.
func (db *DB) DeleteSchedule(ctx context.Context, id string) error {
	return db.DeleteDocument(ctx, id)
}

// GetAdminConfig returns the admin singleton, falling back to defaults when
// it was never written.
func (db *DB) GetAdminConfig(ctx context.Context) (*model.AdminConfig, error) {
	var cfg model.AdminConfig
	err := db.GetDocument(ctx, model.AdminConfigID, &cfg)
	if errors.Is(err, ErrNotFound) {
		return &model.AdminConfig{Password: model.DefaultAdminPassword}, nil
	}
	if err != nil {
		return nil, err
	}
	if cfg.Password == "" {
		cfg.Password = model.DefaultAdminPassword
	}
	return &cfg, nil
}

// SaveAdminConfig writes the admin singleton. Created lazily on first write.
func (db *DB) SaveAdminConfig(ctx context.Context, cfg *model.AdminConfig) error {
	return db.SetDocument(ctx, model.AdminConfigID, cfg, true, "")
}

// GetMessagingConfig returns the outbound destination singleton; an empty
// number means it was never configured.
func (db *DB) GetMessagingConfig(ctx context.Context) (*model.MessagingConfig, error) {
	var cfg model.MessagingConfig
	err := db.GetDocument(ctx, model.MessagingConfigID, &cfg)
	if errors.Is(err, ErrNotFound) {
		return &model.MessagingConfig{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveMessagingConfig writes the destination singleton together with the
// derived admin passcode in one transaction, so the two documents cannot
// drift apart.
func (db *DB) SaveMessagingConfig(ctx context.Context, msg *model.MessagingConfig, admin *model.AdminConfig) error {
	msgData, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	adminData, err := json.Marshal(admin)
	if err != nil {
		return err
	}

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		for _, doc := range []struct {
			id   string
			data []byte
		}{
			{model.MessagingConfigID, msgData},
			{model.AdminConfigID, adminData},
		} {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO documents (collection, id, data)
				VALUES (?, ?, ?)
				ON CONFLICT(collection, id) DO UPDATE SET
					data = excluded.data,
					updated_at = CURRENT_TIMESTAMP`,
				db.collection, doc.id, string(doc.data),
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeErr(err)
	}

	db.bus.publish(Change{Collection: db.collection, ID: model.MessagingConfigID})
	db.bus.publish(Change{Collection: db.collection, ID: model.AdminConfigID})
	return nil
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
