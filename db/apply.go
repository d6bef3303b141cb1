package db

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_asset_tool/apperr"
	"Gin_postgres_redis_asset_tool/lifecycle"
	"Gin_postgres_redis_asset_tool/models"
)

// ApplyPlan writes every mutation of plan as a compare-and-set on state.
// Call it inside Transaction: a row that is no longer in its expected state
// aborts the whole plan.
func (r *Repo) ApplyPlan(ctx context.Context, plan lifecycle.Plan) error {
	now := time.Now()
	for _, m := range plan {
		table := models.TableFor(m.Entity)
		if table == "" {
			return fmt.Errorf("apply plan: unknown entity %q", m.Entity)
		}
		q := r.DB.WithContext(ctx).Table(table).
			Where("id = ? AND state = ? AND deleted_at IS NULL", m.ID, m.From)

		var values map[string]any
		if m.Remove {
			values = map[string]any{"deleted_at": now}
		} else {
			values = map[string]any{"state": m.To, "updated_at": now}
		}
		res := q.Updates(values)
		if res.Error != nil {
			return fmt.Errorf("apply %s on %s %d: %w", m.Event, m.Entity, m.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("%s %d was modified concurrently", m.Entity, m.ID)
		}
	}
	return nil
}
