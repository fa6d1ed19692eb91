package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PostgresRepo persists campaigns in the durable store.
// contact_ids is a text[] column, bridged through array_to_string so the
// row scans with plain database/sql types.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (Campaign, bool, error) {
	var c Campaign
	var scriptID, legacyText, contactIDs sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, status, script_id, legacy_script_text,
			array_to_string(contact_ids, ','),
			total_contacts, started_at, created_at, updated_at
		FROM campaigns
		WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Status, &scriptID, &legacyText, &contactIDs,
			&c.TotalContacts, &c.StartedAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Campaign{}, false, nil
	}
	if err != nil {
		return Campaign{}, false, err
	}
	c.ScriptID = scriptID.String
	c.LegacyScriptText = legacyText.String
	if contactIDs.String != "" {
		c.ContactIDs = strings.Split(contactIDs.String, ",")
	}
	return c, true, nil
}

func (r *PostgresRepo) Update(ctx context.Context, c Campaign) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET
			name = $2, status = $3, script_id = $4, legacy_script_text = $5,
			contact_ids = string_to_array(NULLIF($6, ''), ','),
			total_contacts = $7, started_at = $8, updated_at = $9
		WHERE id = $1`,
		c.ID, c.Name, string(c.Status),
		sql.NullString{String: c.ScriptID, Valid: c.ScriptID != ""},
		sql.NullString{String: c.LegacyScriptText, Valid: c.LegacyScriptText != ""},
		strings.Join(c.ContactIDs, ","),
		c.TotalContacts, c.StartedAt, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("campaigns: not found")
	}
	return nil
}
