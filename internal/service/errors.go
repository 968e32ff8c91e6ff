package service

import (
	"errors"
	"fmt"

	"invoicing/internal/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTemplateInUse is returned when deleting a template that already produced documents.
var ErrTemplateInUse = apperr.Conflict("recurring.delete", "template has generated documents, deactivate it instead")

// ErrRunInProgress is returned when another scheduler sweep holds the run lock.
var ErrRunInProgress = apperr.Conflict("scheduler.run", "a recurring invoice run is already in progress")

// storeErr turns a repository error into an apperr. Missing rows become NotFound with
// notFoundMsg, anything else is a persistence failure.
func storeErr(op, notFoundMsg string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(op, notFoundMsg)
	}
	return apperr.Persistence(op, fmt.Sprintf("failed to %s", describeOp(op)), err)
}

func parseID(op, field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation(op, fmt.Sprintf("invalid %s", field))
	}
	return id, nil
}

var opDescriptions = map[string]string{
	"recurring.create":   "create recurring template",
	"recurring.update":   "update recurring template",
	"recurring.toggle":   "toggle recurring template",
	"recurring.delete":   "delete recurring template",
	"recurring.list":     "list recurring templates",
	"recurring.get":      "load recurring template",
	"recurring.generate": "generate invoice",
	"materialize":        "create invoice",
	"scheduler.run":      "run recurring invoices",
	"audit.list":         "list audit logs",
	"audit.log":          "write audit log",
}

func describeOp(op string) string {
	if d, ok := opDescriptions[op]; ok {
		return d
	}
	return op
}
