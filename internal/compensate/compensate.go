// Package compensate undoes partially written parent/child rows when the store cannot do it
// for us.
package compensate

import (
	"context"
	"errors"
	"fmt"
)

// Step is one store call of a compensated write.
type Step func(ctx context.Context) error

// CreateWithChildren runs createParent, then createChildren. When the children cannot be
// written, deleteParent is called so no parent without children remains.
//
// This is best effort and not crash safe: a process dying between the calls leaves the
// parent behind. Inside a database transaction the rollback covers that case and the
// explicit delete is merely redundant.
func CreateWithChildren(ctx context.Context, createParent, createChildren, deleteParent Step) error {
	if err := createParent(ctx); err != nil {
		return err
	}

	childErr := createChildren(ctx)
	if childErr == nil {
		return nil
	}

	if delErr := deleteParent(ctx); delErr != nil {
		return errors.Join(childErr, &RollbackError{Err: delErr})
	}
	return childErr
}

// RollbackError reports that a compensating delete failed and a parent row may be orphaned.
type RollbackError struct {
	Err error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("compensating delete failed: %v", e.Err)
}

func (e *RollbackError) Unwrap() error {
	return e.Err
}
