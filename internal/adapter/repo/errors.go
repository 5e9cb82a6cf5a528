package repo

import (
	"fmt"

	"strays/internal/domain"
	"strays/internal/infra"
)

// mapErr translates driver errors into domain sentinels, keeping the original
// error in the chain.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case infra.IsNoRows(err):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case infra.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
	case infra.IsInvalidText(err):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case infra.IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
