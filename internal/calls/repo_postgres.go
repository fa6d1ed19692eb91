package calls

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists calls in the durable store.
//
// Schema expectation: a calls table with provider_call_id UNIQUE NOT NULL.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, c Call) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO calls (
			call_id, provider_call_id, contact_id, campaign_id, script_id,
			to_number, to_name, status, transcript, duration, cost,
			recording_url, end_reason, started_at, ended_at,
			raw_provider_response, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		c.CallID, c.ProviderCallID, nullStr(c.ContactID), nullStr(c.CampaignID), nullStr(c.ScriptID),
		c.To, c.ToName, string(c.Status), nullStr(c.Transcript), c.DurationSeconds, c.Cost,
		nullStr(c.RecordingURL), nullStr(c.EndReason), c.StartedAt, c.EndedAt,
		nullStr(c.RawProviderResponse), c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) FindByProviderID(ctx context.Context, providerCallID string) (Call, bool, error) {
	c, err := scanCall(r.db.QueryRowContext(ctx, selectCall+` WHERE provider_call_id = $1`, providerCallID))
	if errors.Is(err, sql.ErrNoRows) {
		return Call{}, false, nil
	}
	if err != nil {
		return Call{}, false, err
	}
	return c, true, nil
}

func (r *PostgresRepo) UpdateByProviderID(ctx context.Context, c Call) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE calls SET
			status = $2, transcript = $3, duration = $4, cost = $5,
			recording_url = $6, end_reason = $7, started_at = $8, ended_at = $9,
			raw_provider_response = $10, updated_at = $11
		WHERE provider_call_id = $1`,
		c.ProviderCallID, string(c.Status), nullStr(c.Transcript), c.DurationSeconds, c.Cost,
		nullStr(c.RecordingURL), nullStr(c.EndReason), c.StartedAt, c.EndedAt,
		nullStr(c.RawProviderResponse), c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("calls: not found")
	}
	return nil
}

func (r *PostgresRepo) ListByCampaign(ctx context.Context, campaignID string) ([]Call, error) {
	rows, err := r.db.QueryContext(ctx, selectCall+` WHERE campaign_id = $1 ORDER BY created_at`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const selectCall = `
	SELECT call_id, provider_call_id, contact_id, campaign_id, script_id,
		to_number, to_name, status, transcript, duration, cost,
		recording_url, end_reason, started_at, ended_at,
		raw_provider_response, created_at, updated_at
	FROM calls`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCall(row rowScanner) (Call, error) {
	var c Call
	var contactID, campaignID, scriptID, transcript, recordingURL, endReason, raw sql.NullString
	var status string
	err := row.Scan(
		&c.CallID, &c.ProviderCallID, &contactID, &campaignID, &scriptID,
		&c.To, &c.ToName, &status, &transcript, &c.DurationSeconds, &c.Cost,
		&recordingURL, &endReason, &c.StartedAt, &c.EndedAt,
		&raw, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return Call{}, err
	}
	c.ContactID = contactID.String
	c.CampaignID = campaignID.String
	c.ScriptID = scriptID.String
	c.Status = CallStatus(status)
	c.Transcript = transcript.String
	c.RecordingURL = recordingURL.String
	c.EndReason = endReason.String
	c.RawProviderResponse = raw.String
	return c, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
