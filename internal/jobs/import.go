package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"invadmin/internal/metrics"
	"invadmin/internal/models"
	"invadmin/internal/normalize"
	"invadmin/internal/schema"
	"invadmin/internal/services"
	"invadmin/internal/sheet"
)

// ImportOptions opciones comunes de los jobs de importación
type ImportOptions struct {
	// DryRun normaliza y valida sin conectar ni escribir
	DryRun bool
}

// pipeline pasos por fila de una importación
type pipeline[T any] struct {
	kind      string
	normalize func(sheet.RawRow) (T, error)
	upsert    func(context.Context, T) (models.Outcome, error)
	describe  func(T, models.Outcome) string
}

// runRows procesa las filas en orden. Los fallos de una fila se cuentan y
// la ejecución continúa; un contexto cancelado detiene el lote.
func runRows[T any](ctx context.Context, r *Runner, rows []sheet.RawRow, p pipeline[T], summary *models.Summary) error {
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("import stopped before row %d: %w", row.Line, err)
		}

		record, err := p.normalize(row)
		if errors.Is(err, normalize.ErrMissingName) {
			fmt.Fprintf(r.Out, "Row %d: Skipped (missing name)\n", row.Line)
			summary.Record(models.OutcomeFailedValidation)
			continue
		}
		if err != nil {
			fmt.Fprintf(r.Out, "Row %d: Failed -> %v\n", row.Line, err)
			summary.Record(models.OutcomeFailedValidation)
			continue
		}

		result, err := r.Schemas.Validate(p.kind, "v1", record)
		if err != nil {
			fmt.Fprintf(r.Out, "Row %d: Failed -> %v\n", row.Line, err)
			summary.Record(models.OutcomeFailedValidation)
			continue
		}
		if !result.Valid {
			fmt.Fprintf(r.Out, "Row %d: Failed -> invalid record: %s\n", row.Line, result.Error())
			summary.Record(models.OutcomeFailedValidation)
			continue
		}

		if p.upsert == nil {
			summary.Record(models.OutcomeWouldWrite)
			continue
		}

		outcome, err := p.upsert(ctx, record)
		if err != nil {
			fmt.Fprintf(r.Out, "Row %d: Failed -> %v\n", row.Line, err)
		} else if p.describe != nil {
			if msg := p.describe(record, outcome); msg != "" {
				fmt.Fprintln(r.Out, msg)
			}
		}
		summary.Record(outcome)
	}
	return nil
}

// finishImport imprime el resumen y empuja las métricas
func (r *Runner) finishImport(ctx context.Context, job string, start time.Time, summary *models.Summary) {
	summary.Duration = r.Now().Sub(start)
	fmt.Fprintf(r.Out, "\nDone. %s\n", summary)

	m := metrics.NewJobMetrics(job, summary.RunID)
	m.Observe(*summary)
	r.pushMetrics(ctx, m)
}

// ImportScrap importa la primera hoja de un xlsx como items de scrap con
// upsert por name
func (r *Runner) ImportScrap(ctx context.Context, path string, opts ImportOptions) (models.Summary, error) {
	cfg := r.Config.Jobs.ImportScrap
	start := r.Now()
	summary := models.Summary{RunID: r.NewRunID(), DryRun: opts.DryRun}

	if !opts.DryRun {
		if err := r.Config.Validate(); err != nil {
			return summary, err
		}
	}
	if err := checkInput(path); err != nil {
		return summary, err
	}

	fmt.Fprintf(r.Out, "Reading: %s\n", path)
	aliases := sheet.ItemAliases().With(r.Config.Aliases.Items)
	wb, err := sheet.ReadWorkbook(path, aliases, cfg.HeaderScanRows)
	if err != nil {
		return summary, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if wb.Fallback() {
		fmt.Fprintln(r.Out, "No recognizable header found. Using single-column fallback: first column = name")
	} else {
		fmt.Fprintf(r.Out, "Detected header row at index %d: [%s]\n", wb.HeaderRow, strings.Join(wb.Labels, ", "))
	}
	fmt.Fprintf(r.Out, "Rows found: %d\n", len(wb.Rows))
	summary.RowsRead = len(wb.Rows)

	normalizer := normalize.NewItemNormalizer(aliases, start)
	p := pipeline[models.Item]{
		kind:      schema.KindItem,
		normalize: normalizer.Normalize,
	}

	if !opts.DryRun && len(wb.Rows) > 0 {
		backend, err := r.connect(ctx, "scrap-importer")
		if err != nil {
			return summary, err
		}
		defer r.disconnect(backend)
		coll, err := backend.Collection(cfg.Collection)
		if err != nil {
			return summary, err
		}
		p.upsert = services.NewItemUpserter(coll).Upsert
	}

	if err := runRows(ctx, r, wb.Rows, p, &summary); err != nil {
		return summary, err
	}
	r.finishImport(ctx, "import-scrap", start, &summary)
	return summary, nil
}

// MigrateUsers importa empleados de un CSV latin-1 con upsert por email.
// Todos comparten la contraseña por defecto, hasheada una vez por ejecución.
func (r *Runner) MigrateUsers(ctx context.Context, path string, opts ImportOptions) (models.Summary, error) {
	cfg := r.Config.Jobs.MigrateUsers
	start := r.Now()
	summary := models.Summary{RunID: r.NewRunID(), DryRun: opts.DryRun}

	if !opts.DryRun {
		if err := r.Config.Validate(); err != nil {
			return summary, err
		}
	}
	if err := checkInput(path); err != nil {
		return summary, err
	}

	rows, err := sheet.ReadCSVFile(path)
	if err != nil {
		return summary, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	fmt.Fprintf(r.Out, "✅ Successfully read %d users from '%s'.\n", len(rows), path)
	fmt.Fprintf(r.Out, "Rows found: %d\n", len(rows))
	summary.RowsRead = len(rows)

	aliases := sheet.UserAliases().With(r.Config.Aliases.Users)
	normalizer, err := normalize.NewUserNormalizer(aliases, cfg.EmailDomain, cfg.Role, cfg.DefaultPassword)
	if err != nil {
		return summary, err
	}
	p := pipeline[models.User]{
		kind:      schema.KindUser,
		normalize: normalizer.Normalize,
		describe:  describeUser,
	}

	if !opts.DryRun && len(rows) > 0 {
		backend, err := r.connect(ctx, "user-importer")
		if err != nil {
			return summary, err
		}
		defer r.disconnect(backend)
		coll, err := backend.Collection(cfg.Collection)
		if err != nil {
			return summary, err
		}
		fmt.Fprintf(r.Out, "\nAdding %d users to the '%s' collection...\n", len(rows), cfg.Collection)
		p.upsert = services.NewUserUpserter(coll).Upsert
	}

	if err := runRows(ctx, r, rows, p, &summary); err != nil {
		return summary, err
	}
	r.finishImport(ctx, "migrate-users", start, &summary)
	return summary, nil
}

func describeUser(u models.User, outcome models.Outcome) string {
	switch outcome {
	case models.OutcomeInserted:
		return fmt.Sprintf("  -> Successfully created user: %s (%s)", u.Name, u.Email)
	case models.OutcomeUpdated, models.OutcomeUnchanged:
		return fmt.Sprintf("  -> Successfully updated user: %s (%s)", u.Name, u.Email)
	}
	return ""
}
