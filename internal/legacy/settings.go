package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

func (r *Runner) importSettings(ctx context.Context) Result {
	n, err := r.settings.Count(ctx)
	if err != nil {
		return Result{Err: fmt.Errorf("check settings: %w", err)}
	}
	if n > 0 {
		return Result{Skipped: true}
	}

	path := r.path("settings.json")
	b, err := readFile(path)
	if errors.Is(err, errNoSource) {
		return Result{Skipped: true}
	}
	if err != nil {
		return Result{Source: path, Err: err}
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(b, &values); err != nil {
		return Result{Source: path, Err: fmt.Errorf("parse settings: %w", err)}
	}
	if err := r.settings.SetMany(ctx, values); err != nil {
		return Result{Source: path, Err: fmt.Errorf("import settings: %w", err)}
	}
	archive(path)
	return Result{Source: path, Imported: len(values)}
}
