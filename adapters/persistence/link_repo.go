package persistence

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

var linkTables = map[profile.Collection]string{
	profile.CollectionSkillCategories: "profile_skill_categories",
	profile.CollectionCertifications:  "profile_certifications",
	profile.CollectionLanguages:       "profile_languages",
}

type postgresLinkRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresLinkRepo(db *pgxpool.Pool, logger logger.Logger) profile.LinkRepository {
	return &postgresLinkRepo{db: db, logger: logger}
}

func linkTable(c profile.Collection) (string, error) {
	t, ok := linkTables[c]
	if !ok {
		return "", apperror.NewInternal(fmt.Sprintf("unknown collection %q", c), nil)
	}
	return t, nil
}

// Link appends itemID after the profile's last item; linking twice is a no-op.
func (r *postgresLinkRepo) Link(ctx context.Context, profileID uuid.UUID, c profile.Collection, itemID uuid.UUID) error {
	table, err := linkTable(c)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (profile_id, item_id, position)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0) FROM %[1]s WHERE profile_id = $1
		ON CONFLICT (profile_id, item_id) DO NOTHING
	`, table)
	if _, err := conn(ctx, r.db).Exec(ctx, query, profileID, itemID); err != nil {
		return mapWriteError(err, string(c), "id", itemID.String(), "failed to link item to profile")
	}
	return nil
}

func (r *postgresLinkRepo) Unlink(ctx context.Context, profileID uuid.UUID, c profile.Collection, itemID uuid.UUID) (bool, error) {
	table, err := linkTable(c)
	if err != nil {
		return false, err
	}
	tag, err := conn(ctx, r.db).Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE profile_id = $1 AND item_id = $2`, table), profileID, itemID)
	if err != nil {
		return false, apperror.NewInternal("failed to unlink item from profile", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ReplaceAll rewrites the whole link set; positions follow itemIDs, which must
// not repeat. Outside a transaction it opens its own.
func (r *postgresLinkRepo) ReplaceAll(ctx context.Context, profileID uuid.UUID, c profile.Collection, itemIDs []uuid.UUID) error {
	table, err := linkTable(c)
	if err != nil {
		return err
	}

	replace := func(db DBTX) error {
		if _, err := db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE profile_id = $1`, table), profileID); err != nil {
			return apperror.NewInternal("failed to clear profile links", err)
		}
		if len(itemIDs) == 0 {
			return nil
		}

		rows := make([][]any, len(itemIDs))
		for i, id := range itemIDs {
			rows[i] = []any{profileID, id, i}
		}
		_, err := db.CopyFrom(ctx,
			pgx.Identifier{table},
			[]string{"profile_id", "item_id", "position"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return mapWriteError(err, string(c), "id", "", "failed to set profile links")
		}
		return nil
	}

	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return replace(tx)
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return replace(tx)
	})
}

func (r *postgresLinkRepo) Contains(ctx context.Context, profileID uuid.UUID, c profile.Collection, itemID uuid.UUID) (bool, error) {
	table, err := linkTable(c)
	if err != nil {
		return false, err
	}
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE profile_id = $1 AND item_id = $2)`, table)
	if err := conn(ctx, r.db).QueryRow(ctx, query, profileID, itemID).Scan(&exists); err != nil {
		return false, apperror.NewInternal("failed to check profile link", err)
	}
	return exists, nil
}

func (r *postgresLinkRepo) ListIDs(ctx context.Context, profileID uuid.UUID, c profile.Collection) ([]uuid.UUID, error) {
	table, err := linkTable(c)
	if err != nil {
		return nil, err
	}
	rows, err := conn(ctx, r.db).Query(ctx, fmt.Sprintf(`SELECT item_id FROM %s WHERE profile_id = $1 ORDER BY position`, table), profileID)
	if err != nil {
		return nil, apperror.NewInternal("failed to list profile links", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, apperror.NewInternal("failed to scan profile links", err)
	}
	return ids, nil
}

// AccountsLinking returns the owners of every profile that links any of itemIDs.
func (r *postgresLinkRepo) AccountsLinking(ctx context.Context, c profile.Collection, itemIDs []uuid.UUID) ([]uuid.UUID, error) {
	table, err := linkTable(c)
	if err != nil {
		return nil, err
	}
	if len(itemIDs) == 0 {
		return []uuid.UUID{}, nil
	}
	sql, args, err := psql.Select("DISTINCT p.account_id").
		From(table + " l").
		Join("profiles p ON p.id = l.profile_id").
		Where(sq.Eq{"l.item_id": itemIDs}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build linking accounts query", err)
	}
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list linking accounts", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, apperror.NewInternal("failed to scan linking accounts", err)
	}
	return ids, nil
}
