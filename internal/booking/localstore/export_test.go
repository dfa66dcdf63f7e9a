package localstore

import "context"

// PutRaw stores value under key verbatim, bypassing the document encoders.
func PutRaw(ctx context.Context, s *Store, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)

	return err
}
