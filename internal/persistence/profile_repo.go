package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kagahq/kaga/internal/domain"
)

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Upsert(ctx context.Context, p domain.ProfileSnapshot) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return errors.New("profile name is required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles(name, lbas_enabled, lbas_groups, lbas_group1_nodes, lbas_group2_nodes, lbas_group3_nodes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			lbas_enabled = excluded.lbas_enabled,
			lbas_groups = excluded.lbas_groups,
			lbas_group1_nodes = excluded.lbas_group1_nodes,
			lbas_group2_nodes = excluded.lbas_group2_nodes,
			lbas_group3_nodes = excluded.lbas_group3_nodes,
			updated_at = excluded.updated_at
	`,
		name,
		boolToInt(p.LBAS.Enabled),
		joinInts(p.LBAS.Groups),
		strings.Join(p.LBAS.GroupNodes[0], ","),
		strings.Join(p.LBAS.GroupNodes[1], ","),
		strings.Join(p.LBAS.GroupNodes[2], ","),
		toUnixMillis(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepo) Get(ctx context.Context, name string) (domain.ProfileSnapshot, error) {
	var (
		p       domain.ProfileSnapshot
		enabled int64
		groups  string
		nodes   [3]string
		updMs   int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT name, lbas_enabled, lbas_groups, lbas_group1_nodes, lbas_group2_nodes, lbas_group3_nodes, updated_at
		FROM profiles
		WHERE name = ?
	`, strings.TrimSpace(name)).Scan(&p.Name, &enabled, &groups, &nodes[0], &nodes[1], &nodes[2], &updMs)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProfileSnapshot{}, fmt.Errorf("%w: %q", domain.ErrProfileNotFound, name)
	}
	if err != nil {
		return domain.ProfileSnapshot{}, fmt.Errorf("get profile: %w", err)
	}

	p.LBAS.Enabled = enabled != 0
	p.LBAS.Groups, err = splitInts(groups)
	if err != nil {
		return domain.ProfileSnapshot{}, fmt.Errorf("decode lbas groups: %w", err)
	}
	for i, raw := range nodes {
		p.LBAS.GroupNodes[i] = splitList(raw)
	}
	p.UpdatedAt = fromUnixMillis(updMs)

	return p, nil
}

func (r *ProfileRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return out, nil
}

func (r *ProfileRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %q", domain.ErrProfileNotFound, name)
	}

	return nil
}
