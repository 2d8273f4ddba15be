package jobs

import (
	"context"
	"fmt"
	"strings"

	"invadmin/internal/metrics"
	"invadmin/internal/models"
	"invadmin/internal/services"
)

// DeleteUsers borra todos los usuarios con el rol dado ("" usa el rol
// configurado) tras la confirmación del operador
func (r *Runner) DeleteUsers(ctx context.Context, role string, confirmer services.Confirmer) (services.PurgeResult, error) {
	cfg := r.Config.Jobs.DeleteUsers
	if role == "" {
		role = cfg.Role
	}

	backend, err := r.connect(ctx, "user-deleter")
	if err != nil {
		return services.PurgeResult{}, err
	}
	defer r.disconnect(backend)

	coll, err := backend.Collection(cfg.Collection)
	if err != nil {
		return services.PurgeResult{}, err
	}
	purger := services.NewUserPurger(coll, cfg.Collection, confirmer, r.Out)
	result, err := purger.Purge(ctx, role)
	if err != nil {
		return result, err
	}

	m := metrics.NewJobMetrics("delete-users", r.NewRunID())
	m.Add(metrics.OutcomeDeleted, int(result.Deleted))
	r.pushMetrics(ctx, m)
	return result, nil
}

// FixTotals recalcula totalQuantity de los items a partir de su historial
// de asignaciones
func (r *Runner) FixTotals(ctx context.Context) (int, error) {
	cfg := r.Config.Jobs.Maintenance

	backend, err := r.connect(ctx, "item-maintenance")
	if err != nil {
		return 0, err
	}
	defer r.disconnect(backend)

	coll, err := backend.Collection(cfg.Collection)
	if err != nil {
		return 0, err
	}
	updated, err := services.NewTotalsFixer(coll).Fix(ctx)
	if err != nil {
		return updated, err
	}
	fmt.Fprintf(r.Out, "Consistency check complete. %d items updated.\n", updated)

	m := metrics.NewJobMetrics("fix-totals", r.NewRunID())
	m.Add(string(models.OutcomeUpdated), updated)
	r.pushMetrics(ctx, m)
	return updated, nil
}

// FixIndexes reemplaza el índice único legacy category_1 por
// category_1_name_1. Los errores de índice se informan sin abortar.
func (r *Runner) FixIndexes(ctx context.Context) (services.IndexFixResult, error) {
	cfg := r.Config.Jobs.Maintenance

	backend, err := r.connect(ctx, "item-maintenance")
	if err != nil {
		return services.IndexFixResult{}, err
	}
	defer r.disconnect(backend)

	indexes, err := backend.Indexes(cfg.Collection)
	if err != nil {
		return services.IndexFixResult{}, err
	}
	result, err := services.NewIndexFixer(indexes).Fix(ctx)
	if err != nil {
		return result, err
	}

	switch {
	case result.DropErr != nil:
		fmt.Fprintf(r.Out, "❌ Could not drop index category_1: %v\n", result.DropErr)
	case result.Dropped != "":
		fmt.Fprintf(r.Out, "Dropped index: %s\n", result.Dropped)
	}
	switch {
	case result.CreateErr != nil:
		fmt.Fprintf(r.Out, "❌ Could not create index category_1_name_1: %v\n", result.CreateErr)
	case result.Created != "":
		fmt.Fprintf(r.Out, "Created index: %s\n", result.Created)
	}
	fmt.Fprintf(r.Out, "Indexes: %s\n", strings.Join(result.Indexes, ", "))

	m := metrics.NewJobMetrics("fix-indexes", r.NewRunID())
	r.pushMetrics(ctx, m)
	return result, nil
}
