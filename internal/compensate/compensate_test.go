package compensate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	calls []string
}

func (r *recorder) step(name string, err error) Step {
	return func(ctx context.Context) error {
		r.calls = append(r.calls, name)
		return err
	}
}

func TestCreateWithChildrenSuccess(t *testing.T) {
	r := &recorder{}

	err := CreateWithChildren(context.Background(), r.step("parent", nil), r.step("children", nil), r.step("delete", nil))

	assert.NoError(t, err)
	assert.Equal(t, []string{"parent", "children"}, r.calls)
}

func TestCreateWithChildrenParentFailureSkipsEverything(t *testing.T) {
	r := &recorder{}
	parentErr := errors.New("insert parent")

	err := CreateWithChildren(context.Background(), r.step("parent", parentErr), r.step("children", nil), r.step("delete", nil))

	assert.ErrorIs(t, err, parentErr)
	assert.Equal(t, []string{"parent"}, r.calls)
}

func TestCreateWithChildrenDeletesParentOnChildFailure(t *testing.T) {
	r := &recorder{}
	childErr := errors.New("insert children")

	err := CreateWithChildren(context.Background(), r.step("parent", nil), r.step("children", childErr), r.step("delete", nil))

	assert.ErrorIs(t, err, childErr)
	assert.Equal(t, []string{"parent", "children", "delete"}, r.calls)
}

func TestCreateWithChildrenReportsFailedRollback(t *testing.T) {
	r := &recorder{}
	childErr := errors.New("insert children")
	delErr := errors.New("delete parent")

	err := CreateWithChildren(context.Background(), r.step("parent", nil), r.step("children", childErr), r.step("delete", delErr))

	assert.ErrorIs(t, err, childErr)
	assert.ErrorIs(t, err, delErr)
	var rb *RollbackError
	assert.ErrorAs(t, err, &rb)
}
